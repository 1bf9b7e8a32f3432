package book

import (
	"context"
)

// Repository 图书仓储接口（依赖倒置：domain定义接口，infrastructure实现）
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书（用于发布时的重复校验）
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// FindByIDs 批量查询图书（购物车展示、下单校验用，避免N+1查询）
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Book, error)

	// Update 更新图书
	Update(ctx context.Context, book *Book) error

	// List 分页查询图书列表（keyword匹配书名/作者，空串表示不过滤）
	List(ctx context.Context, keyword string, page, pageSize int) ([]*Book, int64, error)
}
