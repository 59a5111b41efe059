package order

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// 订单事件的routing key
// 消费方可以用order.*订阅全部订单事件
const (
	RoutingKeyOrderPlaced    = "order.placed"
	RoutingKeyOrderCancelled = "order.cancelled"
)

// EventPublisher 订单事件发布
// nil表示不发布事件
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// OrderPlacedEvent 下单成功事件
type OrderPlacedEvent struct {
	OrderID    uint      `json:"order_id"`
	MemberID   uint      `json:"member_id"`
	ItemID     uint      `json:"item_id"`
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderCancelledEvent 取消订单事件
type OrderCancelledEvent struct {
	OrderID    uint      `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publish 事件在订单事务提交后发布，发布失败只记录日志
// 不保证投递：需要可靠投递时应改为事务内写发件箱表
func publish(ctx context.Context, events EventPublisher, routingKey string, event interface{}, entry *log.Entry) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, routingKey, event); err != nil {
		entry.WithError(err).WithField("routing_key", routingKey).Warn("发布订单事件失败")
	}
}
