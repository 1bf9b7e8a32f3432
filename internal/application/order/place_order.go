package order

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xiebiao/bookmall/internal/domain/cart"
	"github.com/xiebiao/bookmall/internal/domain/inventory"
	"github.com/xiebiao/bookmall/internal/domain/order"
	"github.com/xiebiao/bookmall/internal/domain/shipping"
	"github.com/xiebiao/bookmall/internal/infrastructure/event"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
	"github.com/xiebiao/bookmall/pkg/metrics"
	"github.com/xiebiao/bookmall/pkg/saga"
	"github.com/xiebiao/bookmall/pkg/tracing"
)

// TxManager 事务边界（由mysql.TxManager实现）
// 接口定义在消费方：用例只关心"fn在一个事务里执行"
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PlaceOrderUseCase 下单用例
// 教学要点：这是整个项目最核心的用例，串起购物车、库存、订单三个聚合
//
// 核心问题一：超卖
// 库存扣减不走"查-判-改"（并发下会超卖），走条件UPDATE：
// UPDATE stocks SET available = available - ? WHERE book_id = ? AND available >= ?
// 原子判断+扣减，未命中即库存不足
//
// 核心问题二：多行预留的部分失败
// 购物车有多行，第3行预留失败时前2行必须退回去。用Saga补偿：
// 每行预留是一个步骤，补偿是等量释放；最后一步在一个数据库事务里
// 结算购物车+落库订单，该步失败同样触发前面所有行的释放
//
// 核心问题三：重复提交
// 购物车open→consumed用条件UPDATE，只许成功一次；第二个并发请求
// 在落库事务里Consume返回ErrCartConsumed，整个Saga回滚，零副作用
//
// 预留顺序：按BookID升序。两个并发订单即使都含同样几本书，
// 也以同一顺序竞争库存行，不会交叉等待
type PlaceOrderUseCase struct {
	cartRepo      cart.Repository
	orderRepo     order.Repository
	shippingRepo  shipping.Repository
	inventoryRepo inventory.Repository
	logRepo       inventory.LogRepository
	txManager     TxManager
	publisher     event.Publisher
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(
	cartRepo cart.Repository,
	orderRepo order.Repository,
	shippingRepo shipping.Repository,
	inventoryRepo inventory.Repository,
	logRepo inventory.LogRepository,
	txManager TxManager,
	publisher event.Publisher,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		cartRepo:      cartRepo,
		orderRepo:     orderRepo,
		shippingRepo:  shippingRepo,
		inventoryRepo: inventoryRepo,
		logRepo:       logRepo,
		txManager:     txManager,
		publisher:     publisher,
	}
}

// PlaceOrderRequest 下单请求DTO
type PlaceOrderRequest struct {
	UserID           uint   // 买家用户ID(从JWT中提取)
	ShippingMethodID uint   // 配送方式ID
	Address          string // 收货地址
	PaymentMethod    string // 支付方式名称（本系统仅做记录）
	Note             string // 买家备注（可选）
}

// PlaceOrderResponse 下单响应DTO
type PlaceOrderResponse struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Execute 执行下单用例
//
// 流程：
// 1. 取敞开的购物车，空车拒绝
// 2. 校验配送方式（下架/不存在拒绝）
// 3. Saga：按BookID升序逐行预留库存（补偿=等量释放）
// 4. Saga最后一步：一个事务里结算购物车（open→consumed）+落库订单
// 5. 成功后发布order.placed事件（失败不阻断）
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "order", "PlaceOrder")
	defer span.End()

	start := time.Now()
	resp, err := uc.execute(ctx, req)
	metrics.OrderPlacementDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	metrics.OrdersPlacedTotal.Inc()
	return resp, nil
}

func (uc *PlaceOrderUseCase) execute(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	// 1. 取敞开的购物车
	c, err := uc.cartRepo.FindOpenByUserID(ctx, req.UserID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeCartNotFound) {
			// 没有敞开的车但有已结算的车：这是同一辆车的重复提交，
			// 串行重试与并发重试报同一类错误（购物车已结算）
			if consumed, checkErr := uc.cartRepo.HasConsumedByUserID(ctx, req.UserID); checkErr == nil && consumed {
				return nil, cart.ErrCartConsumed
			}
			return nil, cart.ErrCartEmpty
		}
		return nil, err
	}
	if c.IsEmpty() {
		return nil, cart.ErrCartEmpty
	}
	if req.Address == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "收货地址不能为空")
	}

	// 2. 校验配送方式
	method, err := uc.shippingRepo.FindActiveByID(ctx, req.ShippingMethodID)
	if err != nil {
		return nil, err
	}

	// 3. 组装订单（金额用购物车行的快照价，不信任前端）
	orderNo := order.GenerateOrderNo()
	lines := c.SortedItems()
	orderItems := make([]order.OrderItem, len(lines))
	for i, line := range lines {
		orderItems[i] = order.OrderItem{
			BookID:   line.BookID,
			Title:    line.Title,
			Quantity: line.Quantity,
			Price:    line.UnitPrice,
		}
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "模拟支付"
	}
	newOrder := order.NewOrder(orderNo, req.UserID, c.ID, orderItems,
		method.Name, method.Fee, req.Address)
	newOrder.Note = req.Note
	newOrder.AttachPayment(paymentMethod)

	// 4. Saga：逐行预留 + 事务落库
	s := saga.New(10 * time.Second)
	s.OnCompensationError(func(step string, err error) {
		// 补偿失败意味着库存漏回收，必须留痕供人工对账
		log.Printf("[下单] 补偿失败（需人工核对库存）: step=%s order_no=%s err=%v", step, orderNo, err)
		metrics.SagaCompensationsTotal.Inc()
	})

	for _, line := range lines {
		line := line
		s.AddStep(fmt.Sprintf("预留库存 book=%d", line.BookID),
			func(ctx context.Context) error {
				if err := uc.inventoryRepo.Reserve(ctx, line.BookID, line.Quantity); err != nil {
					metrics.StockReservationsTotal.WithLabelValues("rejected").Inc()
					return err
				}
				metrics.StockReservationsTotal.WithLabelValues("reserved").Inc()
				// 预留日志失败不回滚预留本身：台账数值是真相，日志可事后补
				l := inventory.NewReserveLog(line.BookID, line.Quantity, orderNo, req.UserID)
				if err := uc.logRepo.Append(ctx, l); err != nil {
					log.Printf("[下单] 预留日志写入失败: book=%d order_no=%s err=%v", line.BookID, orderNo, err)
				}
				return nil
			},
			func(ctx context.Context) error {
				if err := uc.inventoryRepo.Release(ctx, line.BookID, line.Quantity); err != nil {
					return err
				}
				metrics.StockReservationsTotal.WithLabelValues("released").Inc()
				l := inventory.NewReleaseLog(line.BookID, line.Quantity, orderNo, req.UserID, "下单失败回滚")
				if err := uc.logRepo.Append(ctx, l); err != nil {
					log.Printf("[下单] 释放日志写入失败: book=%d order_no=%s err=%v", line.BookID, orderNo, err)
				}
				return nil
			},
		)
	}

	// 最后一步：同一个数据库事务里结算购物车+落库订单
	// Consume是防重复提交的锚点：并发的第二单在这里失败，
	// 触发前面所有预留的释放
	s.AddStep("结算购物车并落库订单",
		func(ctx context.Context) error {
			return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
				if err := uc.cartRepo.Consume(txCtx, c.ID); err != nil {
					return err
				}
				return uc.orderRepo.Create(txCtx, newOrder)
			})
		},
		nil, // 事务失败即未提交，无需补偿
	)

	if err := s.Execute(ctx); err != nil {
		metrics.SagaExecutionsTotal.WithLabelValues("failure").Inc()
		// 还原底层业务错误（剥掉StepError包装）
		return nil, apperrors.GetAppError(err)
	}
	metrics.SagaExecutionsTotal.WithLabelValues("success").Inc()

	// 5. 发布领域事件（失败不阻断，熔断器保护）
	evtItems := make([]event.OrderEventItem, len(newOrder.Items))
	for i, item := range newOrder.Items {
		evtItems[i] = event.OrderEventItem{
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	uc.publisher.PublishOrderPlaced(ctx, &event.OrderPlacedEvent{
		OrderNo:   newOrder.OrderNo,
		UserID:    newOrder.UserID,
		Total:     newOrder.Total,
		Items:     evtItems,
		CreatedAt: newOrder.CreatedAt,
	})

	return &PlaceOrderResponse{
		OrderID:   newOrder.ID,
		OrderNo:   newOrder.OrderNo,
		Total:     newOrder.Total,
		TotalYuan: formatPrice(newOrder.Total),
		Status:    newOrder.Status.String(),
		CreatedAt: newOrder.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// failureReason 下单失败原因（指标标签，低基数）
func failureReason(err error) string {
	switch {
	case apperrors.IsCode(err, apperrors.ErrCodeCartEmpty):
		return "empty_cart"
	case apperrors.IsCode(err, apperrors.ErrCodeCartConsumed):
		return "cart_consumed"
	case apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock):
		return "insufficient_stock"
	case apperrors.IsCode(err, apperrors.ErrCodeShippingNotFound):
		return "shipping"
	case apperrors.IsCode(err, apperrors.ErrCodeInvalidParams):
		return "invalid_params"
	default:
		return "persistence"
	}
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
