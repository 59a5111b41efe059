package order

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/jpashop/internal/domain/address"
	"github.com/xiebiao/jpashop/internal/domain/item"
	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/internal/infrastructure/logger"
	"github.com/xiebiao/jpashop/internal/infrastructure/persistence/mysql/mysqltest"
	"github.com/xiebiao/jpashop/pkg/metrics"
)

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return c.err
}

type recordedEvent struct {
	key   string
	event interface{}
}

// recordingPublisher 记录发布的订单事件
type recordingPublisher struct {
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, recordedEvent{key: routingKey, event: event})
	return nil
}

func TestCreateOrderUseCase(t *testing.T) {
	ctx := context.Background()
	shop := mysqltest.NewShop(t)
	cache := &countingInvalidator{}
	events := &recordingPublisher{}
	uc := NewCreateOrderUseCase(shop.OrderSvc, cache, events, logger.Discard().Logger)

	memberID := shop.Join(t, "kim", address.New("서울", "강가", "123-123"))
	bookID := shop.Book(t, "시골 JPA", 10000, 10)

	t.Run("下单成功", func(t *testing.T) {
		placed := testutil.ToFloat64(metrics.OrdersPlacedTotal)

		resp, err := uc.Execute(ctx, CreateOrderRequest{MemberID: memberID, ItemID: bookID, Count: 2})
		require.NoError(t, err)
		assert.NotZero(t, resp.OrderID)

		o, err := shop.Orders.FindByID(ctx, resp.OrderID)
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusOrdered, o.Status)
		require.Len(t, o.Items, 1)
		assert.Equal(t, int64(20000), o.Items[0].TotalPrice())

		book, err := shop.Items.FindByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, 8, book.StockQuantity)

		assert.Equal(t, placed+1, testutil.ToFloat64(metrics.OrdersPlacedTotal))
		assert.Equal(t, 1, cache.calls, "下单后缓存失效")

		require.Len(t, events.events, 1)
		assert.Equal(t, RoutingKeyOrderPlaced, events.events[0].key)
		placedEvent, ok := events.events[0].event.(OrderPlacedEvent)
		require.True(t, ok)
		assert.Equal(t, resp.OrderID, placedEvent.OrderID)
		assert.Equal(t, memberID, placedEvent.MemberID)
		assert.Equal(t, bookID, placedEvent.ItemID)
		assert.Equal(t, 2, placedEvent.Count)
		assert.False(t, placedEvent.OccurredAt.IsZero())
	})

	t.Run("库存不足", func(t *testing.T) {
		failed := testutil.ToFloat64(metrics.OrdersFailedTotal)

		_, err := uc.Execute(ctx, CreateOrderRequest{MemberID: memberID, ItemID: bookID, Count: 11})
		assert.ErrorIs(t, err, item.ErrInsufficientStock)
		assert.Equal(t, failed+1, testutil.ToFloat64(metrics.OrdersFailedTotal))
		assert.Equal(t, 1, cache.calls, "失败时不动缓存")
		assert.Len(t, events.events, 1, "失败时不发布事件")
	})

	t.Run("缓存失效或事件发布失败不影响下单", func(t *testing.T) {
		cache.err = errors.New("connection refused")
		events.err = errors.New("channel/connection is not open")
		defer func() {
			cache.err = nil
			events.err = nil
		}()

		_, err := uc.Execute(ctx, CreateOrderRequest{MemberID: memberID, ItemID: bookID, Count: 1})
		assert.NoError(t, err)
	})

	t.Run("未启用缓存", func(t *testing.T) {
		noCache := NewCreateOrderUseCase(shop.OrderSvc, nil, nil, logger.Discard().Logger)
		_, err := noCache.Execute(ctx, CreateOrderRequest{MemberID: memberID, ItemID: bookID, Count: 1})
		assert.NoError(t, err)
	})
}

func TestCancelOrderUseCase(t *testing.T) {
	ctx := context.Background()
	shop := mysqltest.NewShop(t)
	cache := &countingInvalidator{}
	events := &recordingPublisher{}
	uc := NewCancelOrderUseCase(shop.OrderSvc, cache, events, logger.Discard().Logger)

	memberID := shop.Join(t, "kim", address.New("서울", "강가", "123-123"))
	bookID := shop.Book(t, "시골 JPA", 10000, 10)
	orderID, err := shop.OrderSvc.Order(ctx, memberID, bookID, 2)
	require.NoError(t, err)

	cancelled := testutil.ToFloat64(metrics.OrdersCancelledTotal)
	require.NoError(t, uc.Execute(ctx, orderID))

	o, err := shop.Orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, o.Status)

	book, err := shop.Items.FindByID(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 10, book.StockQuantity, "取消后库存恢复")

	assert.Equal(t, cancelled+1, testutil.ToFloat64(metrics.OrdersCancelledTotal))
	assert.Equal(t, 1, cache.calls)
	require.Len(t, events.events, 1)
	assert.Equal(t, RoutingKeyOrderCancelled, events.events[0].key)
	assert.Equal(t, orderID, events.events[0].event.(OrderCancelledEvent).OrderID)

	assert.ErrorIs(t, uc.Execute(ctx, 999), order.ErrOrderNotFound)
	assert.Equal(t, 1, cache.calls)
	assert.Len(t, events.events, 1)
}
