package shipping

import (
	"context"
)

// Repository 配送方式仓储接口
type Repository interface {
	// Create 创建配送方式
	Create(ctx context.Context, method *Method) error

	// FindActiveByID 查找可选的配送方式
	// 已下架或不存在均返回ErrMethodNotFound（下单校验入口）
	FindActiveByID(ctx context.Context, id uint) (*Method, error)

	// ListActive 列出所有可选的配送方式（结算页展示）
	ListActive(ctx context.Context) ([]*Method, error)

	// Update 更新配送方式（改价、下架）
	Update(ctx context.Context, method *Method) error
}
