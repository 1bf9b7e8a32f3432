package cart

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/cart"
)

// AddItemUseCase 加购用例
// 设计说明：
// 1. 快照发生在这里：行上保存的书名与价格来自加购瞬间的目录数据，
//    此后目录改价改名都不影响这一行
// 2. 加购不检查库存：库存只在下单时预留，购物车不占库存
type AddItemUseCase struct {
	cartRepo cart.Repository
	bookRepo book.Repository
}

// NewAddItemUseCase 创建加购用例
func NewAddItemUseCase(cartRepo cart.Repository, bookRepo book.Repository) *AddItemUseCase {
	return &AddItemUseCase{
		cartRepo: cartRepo,
		bookRepo: bookRepo,
	}
}

// AddItemRequest 加购请求DTO
type AddItemRequest struct {
	UserID   uint // 从JWT中提取
	BookID   uint
	Quantity int
}

// Execute 执行加购
func (uc *AddItemUseCase) Execute(ctx context.Context, req AddItemRequest) (*CartView, error) {
	// 1. 查目录取快照
	b, err := uc.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	// 2. 取（或建）敞开的购物车
	c, err := uc.cartRepo.GetOrCreateOpen(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	// 3. 领域行为：合并或新增行
	if err := c.AddLine(b.ID, b.Title, b.Price, req.Quantity); err != nil {
		return nil, err
	}

	// 4. 持久化
	if err := uc.cartRepo.SaveItems(ctx, c); err != nil {
		return nil, err
	}

	return toCartView(c), nil
}
