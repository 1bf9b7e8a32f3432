package cart

import (
	"context"
)

// Repository 购物车仓储接口
// 教学要点：
// 1. GetOrCreateOpen体现"一人一车"语义：没有敞开的车就建一辆
// 2. Consume用条件UPDATE实现，open→consumed只许成功一次，
//    这是整个下单链路防重复提交的锚点
type Repository interface {
	// GetOrCreateOpen 获取用户当前敞开的购物车，不存在则创建
	GetOrCreateOpen(ctx context.Context, userID uint) (*Cart, error)

	// FindByID 根据ID查找购物车（含行）
	FindByID(ctx context.Context, id uint) (*Cart, error)

	// FindOpenByUserID 查找用户敞开的购物车（不自动创建，结算入口用）
	FindOpenByUserID(ctx context.Context, userID uint) (*Cart, error)

	// SaveItems 持久化购物车行的变更（加购/改量/删行后调用）
	SaveItems(ctx context.Context, cart *Cart) error

	// Consume 将购物车从open置为consumed
	// 返回ErrCartConsumed表示购物车已被其他请求结算（条件UPDATE未命中）
	Consume(ctx context.Context, cartID uint) error

	// HasConsumedByUserID 用户是否存在已结算的购物车
	// 下单入口用它区分"从未加购"和"购物车刚被结算"：
	// 串行的重复提交与并发的重复提交报同一类错误
	HasConsumedByUserID(ctx context.Context, userID uint) (bool, error)
}
