package dto

// RegisterRequest HTTP注册请求
// validator tag说明:
// - required: 必填字段
// - email: 邮箱格式校验
// - min/max: 长度范围校验
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"gopher2024"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50" example:"爱读书的人"`
}

// UserResponse HTTP用户信息响应
type UserResponse struct {
	ID       uint   `json:"id" example:"1"`
	Email    string `json:"email" example:"reader@example.com"`
	Nickname string `json:"nickname" example:"爱读书的人"`
	Role     string `json:"role" example:"customer"`
}

// LoginRequest HTTP登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"gopher2024"`
}

// LoginResponse HTTP登录响应
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in" example:"86400"` // Access Token有效期（秒）
}

// RefreshTokenRequest HTTP刷新Token请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse HTTP刷新Token响应
type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
}
