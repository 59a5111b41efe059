package order

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/pkg/metrics"
)

// CacheInvalidator 订单变化后让订单列表缓存失效
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// CreateOrderUseCase 下单用例
// 教学要点:
// 1. 防超卖的事务逻辑在领域服务order.Service里(锁商品行→扣库存→保存订单)
// 2. 用例层负责领域之外的事:指标、日志、缓存失效
type CreateOrderUseCase struct {
	orders order.Service
	cache  CacheInvalidator
	events EventPublisher
	logger *log.Entry
}

// NewCreateOrderUseCase 创建下单用例
// cache为nil表示未启用订单列表缓存，events为nil表示不发布订单事件
func NewCreateOrderUseCase(orders order.Service, cache CacheInvalidator, events EventPublisher, logger *log.Logger) *CreateOrderUseCase {
	metrics.InitMetrics()
	return &CreateOrderUseCase{
		orders: orders,
		cache:  cache,
		events: events,
		logger: logger.WithField("component", "create_order"),
	}
}

// CreateOrderRequest 下单请求DTO
type CreateOrderRequest struct {
	MemberID uint // 下单会员
	ItemID   uint // 商品
	Count    int  // 购买数量
}

// CreateOrderResponse 下单响应DTO
type CreateOrderResponse struct {
	OrderID uint `json:"order_id"`
}

// Execute 执行下单用例
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveHistogram(metrics.OrderPlacementDuration, time.Since(start).Seconds())
	}()

	entry := uc.logger.WithFields(log.Fields{
		"member_id": req.MemberID,
		"item_id":   req.ItemID,
		"count":     req.Count,
	})

	orderID, err := uc.orders.Order(ctx, req.MemberID, req.ItemID, req.Count)
	if err != nil {
		metrics.IncCounter(metrics.OrdersFailedTotal)
		entry.WithError(err).Warn("下单失败")
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersPlacedTotal)
	entry.WithField("order_id", orderID).Info("下单成功")

	invalidate(ctx, uc.cache, entry)
	publish(ctx, uc.events, RoutingKeyOrderPlaced, OrderPlacedEvent{
		OrderID:    orderID,
		MemberID:   req.MemberID,
		ItemID:     req.ItemID,
		Count:      req.Count,
		OccurredAt: time.Now(),
	}, entry)
	return &CreateOrderResponse{OrderID: orderID}, nil
}

// invalidate 缓存失效失败只记录日志
// 订单已经提交,列表缓存最多在TTL内读到旧数据
func invalidate(ctx context.Context, cache CacheInvalidator, entry *log.Entry) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		entry.WithError(err).Warn("订单列表缓存失效失败")
	}
}
