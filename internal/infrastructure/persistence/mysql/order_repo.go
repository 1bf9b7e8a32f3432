package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/bookmall/internal/domain/order"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// orderRepository 订单仓储实现（MySQL）
// 教学要点：
// 1. Order、OrderItem、Payment是聚合关系，必须一起保存
// 2. 查询时使用Preload预加载，避免N+1问题
// 3. 事务通过context传递（见tx_manager.go）
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// GORM通过foreignKey自动保存关联的Items和Payment；
// 必须在事务中调用（与购物车Consume同一事务）
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}
	if o.Payment != nil && model.Payment != nil {
		o.Payment.ID = model.Payment.ID
		o.Payment.OrderID = model.ID
	}
	return nil
}

// FindByID 根据ID查找订单
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).Preload("Items").Preload("Payment").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).Preload("Items").Preload("Payment").
		Where("order_no = ?", orderNo).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// TransitionStatus 条件更新订单状态
// 教学要点：读-判-写在并发下会让两个取消请求都通过校验、各回补一次库存。
// 把判断搬进UPDATE的WHERE里：
// UPDATE orders SET status = ? WHERE id = ? AND status IN (?)
// 未命中任何行即状态已被并发修改（或订单不存在），调用方的事务回滚
func (r *orderRepository) TransitionStatus(ctx context.Context, orderID uint, from []order.OrderStatus, to order.OrderStatus) error {
	fromCodes := make([]int, len(from))
	for i, s := range from {
		fromCodes[i] = int(s)
	}

	result := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("id = ? AND status IN ?", orderID, fromCodes).
		Updates(map[string]interface{}{
			"status":     int(to),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单状态失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrInvalidStatusTransition
	}
	return nil
}

// UpdatePayment 更新支付记录（取消时翻转为refunded）
func (r *orderRepository) UpdatePayment(ctx context.Context, p *order.Payment) error {
	if p == nil || p.ID == 0 {
		return nil
	}
	err := getDB(ctx, r.db).Model(&PaymentModel{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"status":     string(p.Status),
		"updated_at": p.UpdatedAt,
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新支付记录失败")
	}
	return nil
}

// ListByUserID 查询用户的订单列表
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	query := getDB(ctx, r.db).Model(&OrderModel{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").Preload("Payment").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

// =========================================
// 辅助函数：模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:       item.ID,
			OrderID:  item.OrderID,
			BookID:   item.BookID,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal,
		}
	}

	var payment *PaymentModel
	if o.Payment != nil {
		payment = &PaymentModel{
			ID:         o.Payment.ID,
			OrderID:    o.Payment.OrderID,
			MethodName: o.Payment.MethodName,
			Amount:     o.Payment.Amount,
			Status:     string(o.Payment.Status),
			CreatedAt:  o.Payment.CreatedAt,
			UpdatedAt:  o.Payment.UpdatedAt,
		}
	}

	return &OrderModel{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		UserID:          o.UserID,
		CartID:          o.CartID,
		Status:          int(o.Status),
		ItemsTotal:      o.ItemsTotal,
		ShippingMethod:  o.ShippingMethod,
		ShippingFee:     o.ShippingFee,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		Note:            o.Note,
		Items:           items,
		Payment:         payment,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:       item.ID,
			OrderID:  item.OrderID,
			BookID:   item.BookID,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal,
		}
	}

	var payment *order.Payment
	if model.Payment != nil {
		payment = &order.Payment{
			ID:         model.Payment.ID,
			OrderID:    model.Payment.OrderID,
			MethodName: model.Payment.MethodName,
			Amount:     model.Payment.Amount,
			Status:     order.PaymentStatus(model.Payment.Status),
			CreatedAt:  model.Payment.CreatedAt,
			UpdatedAt:  model.Payment.UpdatedAt,
		}
	}

	return &order.Order{
		ID:              model.ID,
		OrderNo:         model.OrderNo,
		UserID:          model.UserID,
		CartID:          model.CartID,
		Status:          order.OrderStatus(model.Status),
		Items:           items,
		ItemsTotal:      model.ItemsTotal,
		ShippingMethod:  model.ShippingMethod,
		ShippingFee:     model.ShippingFee,
		Total:           model.Total,
		ShippingAddress: model.ShippingAddress,
		Note:            model.Note,
		Payment:         payment,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
