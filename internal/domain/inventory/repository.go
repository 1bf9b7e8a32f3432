package inventory

import (
	"context"
)

// Repository 库存台账仓储接口
// 教学要点：
// 1. Reserve/Release/Restock都是原子操作，靠数据库的条件UPDATE实现，
//    不走"读出来-改一改-写回去"（那样在并发下会超卖）
// 2. Reserve失败返回ErrInsufficientStock，调用方据此决定是否补偿
type Repository interface {
	// Create 创建库存台账（图书发布时调用）
	Create(ctx context.Context, stock *Stock) error

	// FindByBookID 查询某本书的台账
	FindByBookID(ctx context.Context, bookID uint) (*Stock, error)

	// Reserve 预留（扣减）库存
	// 原子执行：UPDATE ... SET available = available - ? WHERE book_id = ? AND available >= ?
	// 未命中任何行时返回ErrInsufficientStock
	Reserve(ctx context.Context, bookID uint, quantity int) error

	// Release 释放（回补）库存
	Release(ctx context.Context, bookID uint, quantity int) error

	// Restock 补货（与Release同为增量，语义区分用于日志）
	Restock(ctx context.Context, bookID uint, quantity int) error
}

// LogRepository 库存日志仓储接口（Append-Only）
type LogRepository interface {
	// Append 追加一条变更日志
	Append(ctx context.Context, log *Log) error

	// ListByBookID 查询某本书的变更历史（分页，倒序）
	ListByBookID(ctx context.Context, bookID uint, page, pageSize int) ([]*Log, int64, error)
}
