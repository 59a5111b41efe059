package order

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/pkg/metrics"
)

// CancelOrderUseCase 取消订单用例
type CancelOrderUseCase struct {
	orders order.Service
	cache  CacheInvalidator
	events EventPublisher
	logger *log.Entry
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(orders order.Service, cache CacheInvalidator, events EventPublisher, logger *log.Logger) *CancelOrderUseCase {
	metrics.InitMetrics()
	return &CancelOrderUseCase{
		orders: orders,
		cache:  cache,
		events: events,
		logger: logger.WithField("component", "cancel_order"),
	}
}

// Execute 取消订单,库存在同一事务中恢复
func (uc *CancelOrderUseCase) Execute(ctx context.Context, orderID uint) error {
	entry := uc.logger.WithField("order_id", orderID)

	if err := uc.orders.CancelOrder(ctx, orderID); err != nil {
		entry.WithError(err).Warn("取消订单失败")
		return err
	}

	metrics.IncCounter(metrics.OrdersCancelledTotal)
	entry.Info("订单已取消")

	invalidate(ctx, uc.cache, entry)
	publish(ctx, uc.events, RoutingKeyOrderCancelled, OrderCancelledEvent{
		OrderID:    orderID,
		OccurredAt: time.Now(),
	}, entry)
	return nil
}
