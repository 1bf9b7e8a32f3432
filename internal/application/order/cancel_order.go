package order

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/bookmall/internal/domain/inventory"
	"github.com/xiebiao/bookmall/internal/domain/order"
	"github.com/xiebiao/bookmall/internal/infrastructure/event"
	"github.com/xiebiao/bookmall/pkg/metrics"
	"github.com/xiebiao/bookmall/pkg/tracing"
)

// CancelOrderUseCase 取消订单用例
// 设计说明：
// 1. 只有待处理/处理中的订单可以取消（状态机校验）
// 2. 取消、回补库存、支付退款在同一个数据库事务里：
//    与下单不同，这里全部资源都在一个库，不需要Saga
// 3. 被取消的订单对应的购物车保持consumed，不会复活
type CancelOrderUseCase struct {
	orderRepo     order.Repository
	inventoryRepo inventory.Repository
	logRepo       inventory.LogRepository
	txManager     TxManager
	publisher     event.Publisher
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(
	orderRepo order.Repository,
	inventoryRepo inventory.Repository,
	logRepo inventory.LogRepository,
	txManager TxManager,
	publisher event.Publisher,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		logRepo:       logRepo,
		txManager:     txManager,
		publisher:     publisher,
	}
}

// Execute 执行取消订单
// 顾客只能取消自己的订单；店员（isStaff）可以取消任何人的订单
func (uc *CancelOrderUseCase) Execute(ctx context.Context, userID, orderID uint, isStaff bool) error {
	ctx, span := tracing.StartSpan(ctx, "order", "CancelOrder")
	defer span.End()

	var cancelled *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !isStaff && !o.IsOwnedBy(userID) {
			return order.ErrUnauthorized
		}

		// 状态机校验：发货后取消被拒绝（基于本事务读到的快照，早失败）
		if err := o.Cancel(); err != nil {
			return err
		}

		// 真正的并发防线：条件UPDATE，只有仍处于可取消状态的行
		// 会被置为已取消。两个并发取消都读到"待处理"时，第二个在
		// 这里未命中，整个事务回滚，库存不会被重复回补
		if err := uc.orderRepo.TransitionStatus(txCtx, o.ID,
			order.AllowedSources(order.OrderStatusCancelled), order.OrderStatusCancelled); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdatePayment(txCtx, o.Payment); err != nil {
			return err
		}

		// 逐行回补库存并记录释放日志
		for _, item := range o.Items {
			if err := uc.inventoryRepo.Release(txCtx, item.BookID, item.Quantity); err != nil {
				return err
			}
			l := inventory.NewReleaseLog(item.BookID, item.Quantity, o.OrderNo, userID, "取消订单")
			if err := uc.logRepo.Append(txCtx, l); err != nil {
				return err
			}
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return err
	}

	metrics.OrdersCancelledTotal.Inc()
	log.Printf("[订单] 已取消: order_no=%s user_id=%d", cancelled.OrderNo, userID)

	uc.publisher.PublishOrderCancelled(ctx, &event.OrderCancelledEvent{
		OrderNo:     cancelled.OrderNo,
		UserID:      cancelled.UserID,
		Total:       cancelled.Total,
		CancelledAt: time.Now(),
	})
	return nil
}
