package order

import (
	"errors"
	"testing"
)

func newTestOrder() *Order {
	items := []OrderItem{
		{BookID: 10, Title: "书A", Quantity: 2, Price: 1500},
		{BookID: 20, Title: "书B", Quantity: 1, Price: 2500},
	}
	return NewOrder("20260828120000100001", 1, 5, items, "普通快递", 800, "北京市海淀区")
}

// TestNewOrder_Totals 工厂方法汇总金额
func TestNewOrder_Totals(t *testing.T) {
	o := newTestOrder()

	if o.ItemsTotal != 5500 {
		t.Errorf("期望商品金额5500，实际%d", o.ItemsTotal)
	}
	if o.Total != 6300 {
		t.Errorf("期望总金额6300（含运费800），实际%d", o.Total)
	}
	if o.Status != OrderStatusPending {
		t.Errorf("新订单期望待处理状态，实际%s", o.Status)
	}
	if o.Items[0].Subtotal != 3000 {
		t.Errorf("期望行小计3000，实际%d", o.Items[0].Subtotal)
	}
	if got := o.CalculateItemsTotal(); got != o.ItemsTotal {
		t.Errorf("实时计算(%d)与冗余字段(%d)不一致", got, o.ItemsTotal)
	}
}

// TestOrder_ForwardTransitions 正向流转：待处理→处理中→已发货→已送达
func TestOrder_ForwardTransitions(t *testing.T) {
	o := newTestOrder()

	steps := []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered}
	for _, target := range steps {
		if err := o.TransitionTo(target); err != nil {
			t.Fatalf("推进到%s失败: %v", target, err)
		}
	}

	// 终态不能再推进
	if err := o.TransitionTo(OrderStatusPending); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("终态推进应被拒绝，实际%v", err)
	}
}

// TestOrder_IllegalTransitions 非法跳转被拒绝
func TestOrder_IllegalTransitions(t *testing.T) {
	o := newTestOrder()

	// 待处理不能直接发货
	if err := o.TransitionTo(OrderStatusShipped); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("跳级推进应被拒绝，实际%v", err)
	}
	// 也不能原地踏步
	if err := o.TransitionTo(OrderStatusPending); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("原地转换应被拒绝，实际%v", err)
	}
}

// TestOrder_CancelWindow 取消窗口：待处理/处理中可取消，发货后不可
func TestOrder_CancelWindow(t *testing.T) {
	// 待处理可取消
	o := newTestOrder()
	o.AttachPayment("模拟支付")
	if !o.IsCancellable() {
		t.Error("待处理订单应可取消")
	}
	if err := o.Cancel(); err != nil {
		t.Fatalf("取消失败: %v", err)
	}
	if o.Payment.Status != PaymentStatusRefunded {
		t.Errorf("取消后支付记录应为refunded，实际%s", o.Payment.Status)
	}

	// 处理中可取消
	o = newTestOrder()
	_ = o.TransitionTo(OrderStatusProcessing)
	if !o.IsCancellable() {
		t.Error("处理中订单应可取消")
	}

	// 已发货不可取消
	o = newTestOrder()
	_ = o.TransitionTo(OrderStatusProcessing)
	_ = o.TransitionTo(OrderStatusShipped)
	if o.IsCancellable() {
		t.Error("已发货订单不应可取消")
	}
	if err := o.Cancel(); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("发货后取消应被拒绝，实际%v", err)
	}
}

// TestOrder_AttachPayment 支付记录金额与订单总额一致
func TestOrder_AttachPayment(t *testing.T) {
	o := newTestOrder()
	o.AttachPayment("模拟支付")

	if o.Payment == nil {
		t.Fatal("支付记录未创建")
	}
	if o.Payment.Amount != o.Total {
		t.Errorf("支付金额(%d)应等于订单总额(%d)", o.Payment.Amount, o.Total)
	}
	if o.Payment.Status != PaymentStatusPaid {
		t.Errorf("期望已支付状态，实际%s", o.Payment.Status)
	}
}

// TestParseStatus 状态值解析
func TestParseStatus(t *testing.T) {
	if _, err := ParseStatus(2); err != nil {
		t.Errorf("合法状态值解析失败: %v", err)
	}
	if _, err := ParseStatus(0); err == nil {
		t.Error("非法状态值应报错")
	}
	if _, err := ParseStatus(6); err == nil {
		t.Error("非法状态值应报错")
	}
}

// TestOrder_IsOwnedBy 归属校验
func TestOrder_IsOwnedBy(t *testing.T) {
	o := newTestOrder()
	if !o.IsOwnedBy(1) {
		t.Error("订单应属于用户1")
	}
	if o.IsOwnedBy(2) {
		t.Error("订单不应属于用户2")
	}
}
