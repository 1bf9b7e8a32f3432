// Package event 领域事件发布
//
// 设计说明：
// 1. 下单/取消订单后发布领域事件，通知、对账等下游订阅消费，
//    主流程不等待下游处理
// 2. RabbitMQ不可用时靠熔断器快速失败：事件发布失败不阻断下单
//    （订单已落库，事件丢失由对账补偿），但要打指标暴露出来
package event

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/bookmall/pkg/circuitbreaker"
	"github.com/xiebiao/bookmall/pkg/metrics"
	"github.com/xiebiao/bookmall/pkg/mq"
)

// 路由键定义
const (
	RoutingKeyOrderPlaced    = "order.placed"
	RoutingKeyOrderCancelled = "order.cancelled"
)

// OrderPlacedEvent 下单成功事件
type OrderPlacedEvent struct {
	OrderNo   string           `json:"order_no"`
	UserID    uint             `json:"user_id"`
	Total     int64            `json:"total"`
	Items     []OrderEventItem `json:"items"`
	CreatedAt time.Time        `json:"created_at"`
}

// OrderCancelledEvent 订单取消事件
type OrderCancelledEvent struct {
	OrderNo     string    `json:"order_no"`
	UserID      uint      `json:"user_id"`
	Total       int64     `json:"total"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// OrderEventItem 事件中的订单行
type OrderEventItem struct {
	BookID   uint  `json:"book_id"`
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"`
}

// Publisher 领域事件发布接口（应用层依赖此接口）
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, evt *OrderPlacedEvent)
	PublishOrderCancelled(ctx context.Context, evt *OrderCancelledEvent)
}

// mqPublisher 基于RabbitMQ的事件发布实现（熔断器保护）
type mqPublisher struct {
	publisher *mq.Publisher
	breaker   *circuitbreaker.CircuitBreaker
}

// NewPublisher 创建事件发布者
// 熔断策略：连续5次发布失败后熔断30秒，期间事件直接丢弃（打指标），
// 避免Broker故障时每次下单都白等连接超时
func NewPublisher(publisher *mq.Publisher) Publisher {
	breaker := circuitbreaker.NewCircuitBreaker("mq-publisher", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("[事件发布] 熔断器%s: %s -> %s", name, from, to)
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	})

	return &mqPublisher{
		publisher: publisher,
		breaker:   breaker,
	}
}

// PublishOrderPlaced 发布下单成功事件
func (p *mqPublisher) PublishOrderPlaced(ctx context.Context, evt *OrderPlacedEvent) {
	p.publish(ctx, RoutingKeyOrderPlaced, evt)
}

// PublishOrderCancelled 发布订单取消事件
func (p *mqPublisher) PublishOrderCancelled(ctx context.Context, evt *OrderCancelledEvent) {
	p.publish(ctx, RoutingKeyOrderCancelled, evt)
}

// publish 经熔断器发布事件
// 发布失败只记日志打指标，不向调用方返回错误（订单主流程已完成）
func (p *mqPublisher) publish(ctx context.Context, routingKey string, message interface{}) {
	err := p.breaker.Execute(func() error {
		return p.publisher.Publish(ctx, routingKey, message)
	})
	if err != nil {
		log.Printf("[事件发布] 发布失败: key=%s err=%v", routingKey, err)
		metrics.MessagesPublishFailedTotal.WithLabelValues(p.publisher.Exchange(), routingKey).Inc()
		return
	}
	metrics.MessagesPublishedTotal.WithLabelValues(p.publisher.Exchange(), routingKey).Inc()
}

// nopPublisher 空实现（MQ未启用时使用，单机部署/本地开发）
type nopPublisher struct{}

// NewNopPublisher 创建空事件发布者
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderPlaced(ctx context.Context, evt *OrderPlacedEvent)       {}
func (nopPublisher) PublishOrderCancelled(ctx context.Context, evt *OrderCancelledEvent) {}
