package user

import (
	"context"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookmall/internal/domain/user"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// RegisterUseCase 用户注册用例
// 设计说明：
// 1. 邮箱查重交给数据库唯一索引，应用层不做SELECT再INSERT
// 2. 密码用bcrypt加密存储，cost使用默认值
type RegisterUseCase struct {
	userRepo user.Repository
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userRepo user.Repository) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo: userRepo,
	}
}

// emailPattern 邮箱格式校验（宽松版，严格校验靠验证邮件）
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	// 1. 参数校验
	if !emailPattern.MatchString(req.Email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}
	if !isStrongPassword(req.Password) {
		return nil, user.ErrWeakPassword
	}

	// 2. 密码加密
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	// 3. 创建用户（邮箱重复由仓储层转换为ErrEmailDuplicate）
	u := user.NewUser(req.Email, string(hashed), req.Nickname)
	if err := uc.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	// 4. 领域实体 → 应用层DTO（不返回密码字段）
	return &RegisterResponse{
		ID:       u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
	}, nil
}

// isStrongPassword 密码强度校验：8-20位，同时包含字母和数字
func isStrongPassword(password string) bool {
	if len(password) < 8 || len(password) > 20 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// =========================================
// 应用层DTO（数据传输对象）
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}
