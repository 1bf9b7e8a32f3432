package order

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/order"
)

// AdvanceOrderUseCase 订单状态推进用例（店员操作）
// 设计说明：
// 1. 推进只能沿状态机邻接表走（待处理→处理中→已发货→已送达），
//    跳级、回退、终态再推进都会被领域层拒绝
// 2. 取消不走这里：取消有库存回补的副作用，见CancelOrderUseCase
// 3. 店员身份由路由中间件的角色校验保证
type AdvanceOrderUseCase struct {
	orderRepo order.Repository
}

// NewAdvanceOrderUseCase 创建状态推进用例
func NewAdvanceOrderUseCase(orderRepo order.Repository) *AdvanceOrderUseCase {
	return &AdvanceOrderUseCase{orderRepo: orderRepo}
}

// AdvanceOrderRequest 推进请求DTO
type AdvanceOrderRequest struct {
	OrderID      uint
	TargetStatus int // 目标状态值
}

// AdvanceOrderResponse 推进响应DTO
type AdvanceOrderResponse struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
	Status  string `json:"status"`
}

// Execute 执行状态推进
func (uc *AdvanceOrderUseCase) Execute(ctx context.Context, req AdvanceOrderRequest) (*AdvanceOrderResponse, error) {
	target, err := order.ParseStatus(req.TargetStatus)
	if err != nil {
		return nil, err
	}
	// 取消是用户/店员的独立操作入口，不在推进接口里
	if target == order.OrderStatusCancelled {
		return nil, order.ErrInvalidStatusTransition
	}

	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if err := o.TransitionTo(target); err != nil {
		return nil, err
	}
	// 条件UPDATE落库：读到的快照可能已过期（另一个店员刚推进过），
	// WHERE守卫未命中即返回非法转换，不会覆盖别人的推进
	if err := uc.orderRepo.TransitionStatus(ctx, o.ID,
		order.AllowedSources(target), target); err != nil {
		return nil, err
	}

	return &AdvanceOrderResponse{
		OrderID: o.ID,
		OrderNo: o.OrderNo,
		Status:  o.Status.String(),
	}, nil
}
