package cart

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/cart"
)

// ViewCartUseCase 查看购物车用例
// 没有敞开的车时返回一辆空车视图（不落库），前端不用处理404
type ViewCartUseCase struct {
	cartRepo cart.Repository
}

// NewViewCartUseCase 创建查看用例
func NewViewCartUseCase(cartRepo cart.Repository) *ViewCartUseCase {
	return &ViewCartUseCase{cartRepo: cartRepo}
}

// Execute 执行查看
func (uc *ViewCartUseCase) Execute(ctx context.Context, userID uint) (*CartView, error) {
	c, err := uc.cartRepo.FindOpenByUserID(ctx, userID)
	if err != nil {
		if cartNotFound(err) {
			return &CartView{Items: []CartItemView{}}, nil
		}
		return nil, err
	}
	return toCartView(c), nil
}

// =========================================
// 共享DTO与转换
// =========================================

// CartView 购物车视图DTO
type CartView struct {
	ID        uint           `json:"id"`
	Status    string         `json:"status"`
	Items     []CartItemView `json:"items"`
	Total     int64          `json:"total"`      // 总金额(分)
	TotalYuan string         `json:"total_yuan"` // 总金额(元)
}

// CartItemView 购物车行视图DTO
type CartItemView struct {
	BookID       uint   `json:"book_id"`
	Title        string `json:"title"`
	UnitPrice    int64  `json:"unit_price"`
	Quantity     int    `json:"quantity"`
	Subtotal     int64  `json:"subtotal"`
	SubtotalYuan string `json:"subtotal_yuan"`
}

// toCartView 领域实体 → 视图DTO
func toCartView(c *cart.Cart) *CartView {
	items := make([]CartItemView, len(c.Items))
	for i := range c.Items {
		item := &c.Items[i]
		items[i] = CartItemView{
			BookID:       item.BookID,
			Title:        item.Title,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			Subtotal:     item.Subtotal(),
			SubtotalYuan: formatPrice(item.Subtotal()),
		}
	}
	return &CartView{
		ID:        c.ID,
		Status:    c.Status.String(),
		Items:     items,
		Total:     c.Total(),
		TotalYuan: formatPrice(c.Total()),
	}
}
