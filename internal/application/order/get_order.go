package order

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/order"
)

// GetOrderUseCase 订单详情查询用例
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建详情查询用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// OrderDetail 订单详情DTO
type OrderDetail struct {
	ID              uint              `json:"id"`
	OrderNo         string            `json:"order_no"`
	Status          string            `json:"status"`
	StatusCode      int               `json:"status_code"`
	Items           []OrderItemDetail `json:"items"`
	ItemsTotal      int64             `json:"items_total"`
	ShippingMethod  string            `json:"shipping_method"`
	ShippingFee     int64             `json:"shipping_fee"`
	Total           int64             `json:"total"`
	TotalYuan       string            `json:"total_yuan"`
	ShippingAddress string            `json:"shipping_address"`
	Note            string            `json:"note,omitempty"`
	Payment         *PaymentDetail    `json:"payment,omitempty"`
	CreatedAt       string            `json:"created_at"`
}

// OrderItemDetail 订单明细DTO
type OrderItemDetail struct {
	BookID   uint   `json:"book_id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Subtotal int64  `json:"subtotal"`
}

// PaymentDetail 支付记录DTO
type PaymentDetail struct {
	MethodName string `json:"method_name"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
}

// Execute 执行详情查询
// isStaff为true时跳过归属校验（店员可查所有订单）
func (uc *GetOrderUseCase) Execute(ctx context.Context, userID, orderID uint, isStaff bool) (*OrderDetail, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isStaff && !o.IsOwnedBy(userID) {
		return nil, order.ErrUnauthorized
	}
	return toOrderDetail(o), nil
}

// ListOrdersUseCase 订单列表查询用例
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建列表查询用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// ListOrdersResponse 列表响应DTO
type ListOrdersResponse struct {
	List     []OrderDetail `json:"list"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// Execute 执行列表查询（只查自己的订单）
func (uc *ListOrdersUseCase) Execute(ctx context.Context, userID uint, page, pageSize int) (*ListOrdersResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	orders, total, err := uc.orderRepo.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	list := make([]OrderDetail, len(orders))
	for i, o := range orders {
		list[i] = *toOrderDetail(o)
	}

	return &ListOrdersResponse{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// toOrderDetail 领域实体 → 详情DTO
func toOrderDetail(o *order.Order) *OrderDetail {
	items := make([]OrderItemDetail, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemDetail{
			BookID:   item.BookID,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal,
		}
	}

	var payment *PaymentDetail
	if o.Payment != nil {
		payment = &PaymentDetail{
			MethodName: o.Payment.MethodName,
			Amount:     o.Payment.Amount,
			Status:     string(o.Payment.Status),
		}
	}

	return &OrderDetail{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		Status:          o.Status.String(),
		StatusCode:      int(o.Status),
		Items:           items,
		ItemsTotal:      o.ItemsTotal,
		ShippingMethod:  o.ShippingMethod,
		ShippingFee:     o.ShippingFee,
		Total:           o.Total,
		TotalYuan:       formatPrice(o.Total),
		ShippingAddress: o.ShippingAddress,
		Note:            o.Note,
		Payment:         payment,
		CreatedAt:       o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
