package dto

// AddCartItemRequest HTTP加购请求
type AddCartItemRequest struct {
	BookID   uint `json:"book_id" binding:"required" example:"1"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999" example:"2"`
}

// UpdateCartItemRequest HTTP改量请求（覆盖式）
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=999" example:"3"`
}

// CartItemResponse HTTP购物车行响应
// 价格是加入时的快照，后续改价不影响已有行
type CartItemResponse struct {
	BookID       uint   `json:"book_id" example:"1"`
	Title        string `json:"title" example:"Go语言实战"`
	UnitPrice    int64  `json:"unit_price" example:"5900"`
	Quantity     int    `json:"quantity" example:"2"`
	Subtotal     int64  `json:"subtotal" example:"11800"`
	SubtotalYuan string `json:"subtotal_yuan" example:"118.00"`
}

// CartResponse HTTP购物车响应
type CartResponse struct {
	ID        uint               `json:"id" example:"7"`
	Status    string             `json:"status" example:"敞开"`
	Items     []CartItemResponse `json:"items"`
	Total     int64              `json:"total" example:"11800"`
	TotalYuan string             `json:"total_yuan" example:"118.00"`
}
