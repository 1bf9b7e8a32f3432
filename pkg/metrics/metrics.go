// Package metrics 提供基于Prometheus的指标收集
//
// 可观测性三支柱之一（Tracing、Metrics、Logging）：
// - Tracing回答"为什么慢？"（pkg/tracing）
// - Metrics回答"有多少？多快？"（本包）
//
// 指标类型速查：
// - Counter（只增不减）：请求总数、下单总数、预留失败总数
// - Gauge（可增可减）：处理中的请求数、熔断器状态
// - Histogram（分布）：请求耗时、下单耗时（自动算P50/P90/P99）
//
// 命名规范：
// - Counter以`_total`结尾；Histogram以单位结尾（`_seconds`）
// - 标签只用低基数维度（method/path/status），绝不用user_id
//
// 使用：启动时调用InitMetrics()，/metrics端点交给promhttp.Handler()
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method（GET/POST）、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 下单链路指标

	// OrdersPlacedTotal 成功下单总数
	OrdersPlacedTotal prometheus.Counter

	// OrdersFailedTotal 下单失败总数
	// 标签：reason（empty_cart/cart_consumed/insufficient_stock/shipping/persistence）
	OrdersFailedTotal *prometheus.CounterVec

	// OrdersCancelledTotal 取消订单总数
	OrdersCancelledTotal prometheus.Counter

	// OrderPlacementDuration 下单耗时（含库存预留与落库）
	OrderPlacementDuration prometheus.Histogram

	// StockReservationsTotal 库存预留结果总数
	// 标签：result（reserved/rejected/released）
	StockReservationsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数，标签：result（success/failure）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaCompensationsTotal Saga补偿执行总数
	SagaCompensationsTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数，标签：exchange、routing_key
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesPublishFailedTotal 消息发布失败总数（含熔断拒绝）
	MessagesPublishFailedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次；promauto自动注册到默认Registry
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	OrdersPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "成功下单总数",
		},
	)

	OrdersFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "下单失败总数",
		},
		[]string{"reason"},
	)

	OrdersCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "取消订单总数",
		},
	)

	OrderPlacementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "order_placement_duration_seconds",
			Help: "下单耗时（秒）",
			// 下单涉及逐行库存预留+事务落库，桶放宽到10s
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	StockReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_reservations_total",
			Help: "库存预留结果总数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagesPublishFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_publish_failed_total",
			Help: "消息发布失败总数（含熔断拒绝）",
		},
		[]string{"exchange", "routing_key"},
	)
}
