package dto

// PlaceOrderRequest HTTP下单请求
// 买什么、买多少来自服务端的购物车，请求里只带结算信息，
// 防止前端伪造价格或数量
type PlaceOrderRequest struct {
	ShippingMethodID uint   `json:"shipping_method_id" binding:"required" example:"1"`
	Address          string `json:"address" binding:"required,max=500" example:"浙江省杭州市西湖区文三路100号"`
	PaymentMethod    string `json:"payment_method" binding:"omitempty,max=50" example:"模拟支付"`
	Note             string `json:"note" binding:"omitempty,max=200" example:"放前台代收"`
}

// PlaceOrderResponse HTTP下单响应
type PlaceOrderResponse struct {
	OrderID   uint   `json:"order_id" example:"1"`
	OrderNo   string `json:"order_no" example:"ORD1699248000123456"`
	Total     int64  `json:"total" example:"13000"`
	TotalYuan string `json:"total_yuan" example:"130.00"`
	Status    string `json:"status" example:"待处理"`
	CreatedAt string `json:"created_at" example:"2024-11-06 10:30:00"`
}

// AdvanceOrderRequest HTTP订单状态推进请求（店员操作）
// 取消不走这个接口，取消有独立入口（涉及库存回补与退款）
type AdvanceOrderRequest struct {
	TargetStatus int `json:"target_status" binding:"required,min=2,max=4" example:"2"` // 2处理中 3已发货 4已送达
}

// AdvanceOrderResponse HTTP状态推进响应
type AdvanceOrderResponse struct {
	OrderID uint   `json:"order_id" example:"1"`
	OrderNo string `json:"order_no" example:"ORD1699248000123456"`
	Status  string `json:"status" example:"处理中"`
}

// OrderItemResponse HTTP订单明细响应
type OrderItemResponse struct {
	BookID   uint   `json:"book_id" example:"1"`
	Title    string `json:"title" example:"Go语言实战"`
	Quantity int    `json:"quantity" example:"2"`
	Price    int64  `json:"price" example:"5900"`
	Subtotal int64  `json:"subtotal" example:"11800"`
}

// PaymentResponse HTTP支付记录响应
type PaymentResponse struct {
	MethodName string `json:"method_name" example:"模拟支付"`
	Amount     int64  `json:"amount" example:"13000"`
	Status     string `json:"status" example:"paid"`
}

// OrderResponse HTTP订单详情响应
type OrderResponse struct {
	ID              uint                `json:"id" example:"1"`
	OrderNo         string              `json:"order_no" example:"ORD1699248000123456"`
	Status          string              `json:"status" example:"待处理"`
	StatusCode      int                 `json:"status_code" example:"1"`
	Items           []OrderItemResponse `json:"items"`
	ItemsTotal      int64               `json:"items_total" example:"11800"`
	ShippingMethod  string              `json:"shipping_method" example:"标准快递"`
	ShippingFee     int64               `json:"shipping_fee" example:"1200"`
	Total           int64               `json:"total" example:"13000"`
	TotalYuan       string              `json:"total_yuan" example:"130.00"`
	ShippingAddress string              `json:"shipping_address" example:"浙江省杭州市西湖区文三路100号"`
	Note            string              `json:"note,omitempty" example:"放前台代收"`
	Payment         *PaymentResponse    `json:"payment,omitempty"`
	CreatedAt       string              `json:"created_at" example:"2024-11-06 10:30:00"`
}

// CreateShippingMethodRequest HTTP创建配送方式请求（店员操作）
type CreateShippingMethodRequest struct {
	Name          string `json:"name" binding:"required,max=50" example:"标准快递"`
	Fee           int64  `json:"fee" binding:"min=0,max=99999" example:"1200"` // 运费(分),0表示包邮
	EstimatedDays int    `json:"estimated_days" binding:"required,min=1,max=60" example:"3"`
}

// ShippingMethodResponse HTTP配送方式响应
type ShippingMethodResponse struct {
	ID            uint   `json:"id" example:"1"`
	Name          string `json:"name" example:"标准快递"`
	Fee           int64  `json:"fee" example:"1200"`
	FeeYuan       string `json:"fee_yuan" example:"12.00"`
	EstimatedDays int    `json:"estimated_days" example:"3"`
}
