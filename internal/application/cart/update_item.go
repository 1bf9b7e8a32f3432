package cart

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/cart"
)

// UpdateItemUseCase 修改购物车行数量用例
type UpdateItemUseCase struct {
	cartRepo cart.Repository
}

// NewUpdateItemUseCase 创建改量用例
func NewUpdateItemUseCase(cartRepo cart.Repository) *UpdateItemUseCase {
	return &UpdateItemUseCase{cartRepo: cartRepo}
}

// UpdateItemRequest 改量请求DTO
type UpdateItemRequest struct {
	UserID   uint
	BookID   uint
	Quantity int // 覆盖式数量
}

// Execute 执行改量
func (uc *UpdateItemUseCase) Execute(ctx context.Context, req UpdateItemRequest) (*CartView, error) {
	c, err := uc.cartRepo.FindOpenByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := c.UpdateQuantity(req.BookID, req.Quantity); err != nil {
		return nil, err
	}

	if err := uc.cartRepo.SaveItems(ctx, c); err != nil {
		return nil, err
	}
	return toCartView(c), nil
}

// RemoveItemUseCase 删除购物车行用例
type RemoveItemUseCase struct {
	cartRepo cart.Repository
}

// NewRemoveItemUseCase 创建删行用例
func NewRemoveItemUseCase(cartRepo cart.Repository) *RemoveItemUseCase {
	return &RemoveItemUseCase{cartRepo: cartRepo}
}

// Execute 执行删行
func (uc *RemoveItemUseCase) Execute(ctx context.Context, userID, bookID uint) (*CartView, error) {
	c, err := uc.cartRepo.FindOpenByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	removed, err := c.RemoveLine(bookID)
	if err != nil {
		return nil, err
	}
	// 没删到行时购物车未变化，跳过落库
	if removed {
		if err := uc.cartRepo.SaveItems(ctx, c); err != nil {
			return nil, err
		}
	}
	return toCartView(c), nil
}
