package order

import (
	"time"
)

// OrderStatus 订单状态
// 教学要点：
// 1. 使用int类型而非string（节省存储空间，便于索引）
// 2. 状态值1-4沿正向流转递增，5为取消终态
type OrderStatus int

const (
	OrderStatusPending    OrderStatus = 1 // 待处理（刚下单）
	OrderStatusProcessing OrderStatus = 2 // 处理中（备货）
	OrderStatusShipped    OrderStatus = 3 // 已发货
	OrderStatusDelivered  OrderStatus = 4 // 已送达（终态）
	OrderStatusCancelled  OrderStatus = 5 // 已取消（终态）
)

// String 实现Stringer接口（方便日志输出）
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "待处理"
	case OrderStatusProcessing:
		return "处理中"
	case OrderStatusShipped:
		return "已发货"
	case OrderStatusDelivered:
		return "已送达"
	case OrderStatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// ParseStatus 解析状态值（Handler层接收int参数时校验）
func ParseStatus(v int) (OrderStatus, error) {
	s := OrderStatus(v)
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return s, nil
	default:
		return 0, ErrInvalidStatusTransition
	}
}

// transitions 合法的状态转换表
// 教学要点：状态机用邻接表表达，推进只能沿表走，
// 发货后不可取消（已进入物流，退货走售后而非取消）
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {}, // 终态
	OrderStatusCancelled:  {}, // 终态
}

// AllowedSources 能一步转换到target的所有源状态
// 仓储的条件UPDATE用它做WHERE守卫，保证数据库里的状态流转
// 与这张邻接表严格一致
func AllowedSources(target OrderStatus) []OrderStatus {
	var sources []OrderStatus
	for from, targets := range transitions {
		for _, to := range targets {
			if to == target {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// PaymentStatus 支付记录状态
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"     // 已支付
	PaymentStatusRefunded PaymentStatus = "refunded" // 已退款（订单取消时联动）
)

// Payment 支付记录（聚合内的子实体）
// 设计说明：本系统不接真实支付网关，下单即视为支付成功并落一条
// 支付记录；取消订单时状态翻转为refunded，与库存回补同事务完成
type Payment struct {
	ID         uint
	OrderID    uint          // 所属订单ID
	MethodName string        // 支付方式名称（如"模拟支付"）
	Amount     int64         // 支付金额（分）
	Status     PaymentStatus // 支付状态
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Order 订单实体（聚合根）
// 教学要点：
// 1. Order是聚合根，OrderItem/Payment是子实体
// 2. OrderNo是业务主键（全局唯一，时间有序）
// 3. Total冗余存储（防止改价后历史订单金额变化）
// 4. CartID记录订单由哪辆购物车结算而来（一辆车最多一张订单）
type Order struct {
	ID              uint
	OrderNo         string      // 订单号（业务主键）
	UserID          uint        // 买家用户ID
	CartID          uint        // 来源购物车ID
	Status          OrderStatus // 订单状态
	Items           []OrderItem // 订单明细
	ItemsTotal      int64       // 商品金额合计（分）
	ShippingMethod  string      // 配送方式名称快照
	ShippingFee     int64       // 运费（分）
	Total           int64       // 订单总金额 = ItemsTotal + ShippingFee
	ShippingAddress string      // 收货地址
	Note            string      // 买家备注（可选）
	Payment         *Payment    // 支付记录
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem 订单明细项
// Title/Price是下单时的快照，不直接关联Book对象
type OrderItem struct {
	ID       uint
	OrderID  uint   // 所属订单ID
	BookID   uint   // 图书ID
	Title    string // 下单时的书名快照
	Quantity int    // 购买数量
	Price    int64  // 下单时的单价（分）
	Subtotal int64  // 行小计 = Price * Quantity，冗余存储
}

// NewOrder 创建新订单（工厂方法）
// 明细、运费均已在应用层算好；工厂负责汇总与初始状态
func NewOrder(orderNo string, userID, cartID uint, items []OrderItem,
	shippingMethod string, shippingFee int64, address string) *Order {

	now := time.Now()
	var itemsTotal int64
	for idx := range items {
		items[idx].Subtotal = items[idx].Price * int64(items[idx].Quantity)
		itemsTotal += items[idx].Subtotal
	}

	return &Order{
		OrderNo:         orderNo,
		UserID:          userID,
		CartID:          cartID,
		Status:          OrderStatusPending,
		Items:           items,
		ItemsTotal:      itemsTotal,
		ShippingMethod:  shippingMethod,
		ShippingFee:     shippingFee,
		Total:           itemsTotal + shippingFee,
		ShippingAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AttachPayment 附加支付记录（下单时调用）
func (o *Order) AttachPayment(methodName string) {
	now := time.Now()
	o.Payment = &Payment{
		OrderID:    o.ID,
		MethodName: methodName,
		Amount:     o.Total,
		Status:     PaymentStatusPaid,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
// 先检查是否可以转换（业务规则校验），成功后更新UpdatedAt（审计追踪）
func (o *Order) TransitionTo(target OrderStatus) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// IsCancellable 是否还能取消
// 业务规则：只有待处理/处理中的订单可以取消
func (o *Order) IsCancellable() bool {
	return o.CanTransitionTo(OrderStatusCancelled)
}

// Cancel 取消订单（领域行为）
// 取消时支付记录联动退款
func (o *Order) Cancel() error {
	if err := o.TransitionTo(OrderStatusCancelled); err != nil {
		return err
	}
	if o.Payment != nil {
		o.Payment.Status = PaymentStatusRefunded
		o.Payment.UpdatedAt = time.Now()
	}
	return nil
}

// CalculateItemsTotal 根据明细实时计算商品金额（校验冗余字段用）
func (o *Order) CalculateItemsTotal() int64 {
	var total int64
	for idx := range o.Items {
		total += o.Items[idx].Price * int64(o.Items[idx].Quantity)
	}
	return total
}

// IsOwnedBy 检查订单是否属于指定用户（防止越权访问他人订单）
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
