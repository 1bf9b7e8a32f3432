package metrics

import "testing"

// TestInitMetrics_Idempotent 重复初始化不应panic（promauto重复注册会panic）
func TestInitMetrics_Idempotent(t *testing.T) {
	InitMetrics()
	InitMetrics()

	if OrdersPlacedTotal == nil {
		t.Fatal("指标未初始化")
	}
	if StockReservationsTotal == nil {
		t.Fatal("库存预留指标未初始化")
	}

	// 基本可用性：打点不panic
	OrdersPlacedTotal.Inc()
	StockReservationsTotal.WithLabelValues("reserved").Inc()
	OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
}
