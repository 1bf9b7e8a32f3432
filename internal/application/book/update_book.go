package book

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/inventory"
)

// UpdateBookUseCase 图书信息修改用例（店员操作）
// 改价不影响历史订单与已加入购物车的行（行上保存的是加入时的快照价），
// 所以这里不需要碰购物车和订单
type UpdateBookUseCase struct {
	bookRepo      book.Repository
	inventoryRepo inventory.Repository
}

// NewUpdateBookUseCase 创建修改用例
func NewUpdateBookUseCase(bookRepo book.Repository, inventoryRepo inventory.Repository) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookRepo: bookRepo, inventoryRepo: inventoryRepo}
}

// UpdateBookRequest 修改请求DTO
// 零值字段表示不修改
type UpdateBookRequest struct {
	BookID      uint
	Title       string
	Author      string
	Publisher   string
	Description string
	Price       int64 // 0表示不改价
}

// Execute 执行修改
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookDetail, error) {
	b, err := uc.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	if req.Price > 0 {
		if err := b.UpdatePrice(req.Price); err != nil {
			return nil, err
		}
	}
	b.UpdateInfo(req.Title, req.Author, req.Publisher, req.Description)

	if err := uc.bookRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	available := 0
	if stock, err := uc.inventoryRepo.FindByBookID(ctx, req.BookID); err == nil {
		available = stock.Available
	}

	return &BookDetail{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Price:       b.Price,
		Available:   available,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
