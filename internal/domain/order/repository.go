package order

import (
	"context"
)

// Repository 订单仓储接口
// 教学要点：
// 1. Create必须把订单、明细、支付记录落在同一事务里
//   （通过context传递事务，见infrastructure的TxManager）
// 2. 查询接口均预加载明细与支付记录
type Repository interface {
	// Create 创建订单（含明细和支付记录）
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// TransitionStatus 条件更新状态：只有当前状态仍在from之内才写入
	// 教学要点：状态流转的并发防线与库存预留、购物车结算同款，都是
	// 条件UPDATE。两个并发取消都读到"待处理"时，第二个在这里未命中，
	// 返回ErrInvalidStatusTransition，事务回滚，库存不会被重复回补
	TransitionStatus(ctx context.Context, orderID uint, from []OrderStatus, to OrderStatus) error

	// UpdatePayment 更新支付记录（取消时翻转为refunded）
	UpdatePayment(ctx context.Context, payment *Payment) error

	// ListByUserID 查询用户的订单列表（分页，按创建时间倒序）
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
}
