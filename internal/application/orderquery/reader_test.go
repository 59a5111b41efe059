package orderquery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xiebiao/jpashop/internal/application/orderquery"
	"github.com/xiebiao/jpashop/internal/domain/address"
	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/internal/infrastructure/config"
	"github.com/xiebiao/jpashop/internal/infrastructure/logger"
	"github.com/xiebiao/jpashop/internal/infrastructure/persistence/mysql/mysqltest"
	"github.com/xiebiao/jpashop/pkg/circuitbreaker"
	"github.com/xiebiao/jpashop/pkg/metrics"
)

type fixture struct {
	shop     *mysqltest.Shop
	reader   *orderquery.Reader
	recorder *tracetest.SpanRecorder
}

func newFixture(t *testing.T, batchSize int, cache orderquery.ViewCache) *fixture {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	shop := mysqltest.NewShop(t)
	cfg := config.QueryConfig{DefaultBatchFetchSize: batchSize, DefaultLimit: 100, MaxLimit: 1000}
	reader := orderquery.NewReader(shop.OrderQuery, shop.Members, shop.Items, shop.TxManager, cache, cfg, logger.Discard().Logger)

	return &fixture{shop: shop, reader: reader, recorder: recorder}
}

// lastQueries 最近一次读取发出的SQL条数(从Span属性读取)
func (f *fixture) lastQueries(t *testing.T) int {
	t.Helper()
	spans := f.recorder.Ended()
	require.NotEmpty(t, spans, "没有记录到Span")

	for _, kv := range spans[len(spans)-1].Attributes() {
		if kv.Key == "db.statement_count" {
			return int(kv.Value.AsInt64())
		}
	}
	t.Fatal("Span缺少db.statement_count属性")
	return 0
}

// summary 与加载方式无关的订单内容
type summary struct {
	OrderID uint
	Name    string
	Date    int64
	Status  order.OrderStatus
	Address address.Address
	Items   []orderquery.OrderItemDTO
}

func fromEntities(orders []*order.Order) []summary {
	out := make([]summary, len(orders))
	for i, o := range orders {
		out[i] = summary{
			OrderID: o.ID,
			Name:    o.Member.Name,
			Date:    o.OrderDate.UnixNano(),
			Status:  o.Status,
			Address: o.Delivery.Address,
			Items:   []orderquery.OrderItemDTO{},
		}
		for _, oi := range o.Items {
			out[i].Items = append(out[i].Items, orderquery.OrderItemDTO{
				ItemName:   oi.Item.Name,
				OrderPrice: oi.OrderPrice,
				Count:      oi.Count,
			})
		}
	}
	return out
}

func fromDTOs(dtos []orderquery.OrderDTO) []summary {
	out := make([]summary, len(dtos))
	for i, d := range dtos {
		out[i] = summary{
			OrderID: d.OrderID,
			Name:    d.Name,
			Date:    d.OrderDate.UnixNano(),
			Status:  d.OrderStatus,
			Address: d.Address,
			Items:   append([]orderquery.OrderItemDTO{}, d.OrderItems...),
		}
	}
	return out
}

func fromQueryDTOs(dtos []orderquery.OrderQueryDTO) []summary {
	out := make([]summary, len(dtos))
	for i, d := range dtos {
		out[i] = summary{
			OrderID: d.OrderID,
			Name:    d.Name,
			Date:    d.OrderDate.UnixNano(),
			Status:  d.OrderStatus,
			Address: d.Address,
			Items:   []orderquery.OrderItemDTO{},
		}
		for _, it := range d.OrderItems {
			out[i].Items = append(out[i].Items, orderquery.OrderItemDTO{
				ItemName:   it.ItemName,
				OrderPrice: it.OrderPrice,
				Count:      it.Count,
			})
		}
	}
	return out
}

// readAll 用每种方式读取一遍
func readAll(t *testing.T, r *orderquery.Reader, search order.Search) map[string][]summary {
	t.Helper()
	ctx := context.Background()
	got := make(map[string][]summary)

	entities, err := r.ListEntities(ctx, search)
	require.NoError(t, err)
	got[orderquery.StrategyLazyEntity] = fromEntities(entities)

	dtos, err := r.ListDTOs(ctx, search)
	require.NoError(t, err)
	got[orderquery.StrategyLazyDTO] = fromDTOs(dtos)

	dtos, err = r.ListWithFetchJoin(ctx, search)
	require.NoError(t, err)
	got[orderquery.StrategyFetchJoin] = fromDTOs(dtos)

	dtos, err = r.ListPaged(ctx, search, order.NewPage(0, 0))
	require.NoError(t, err)
	got[orderquery.StrategyBatchFetch] = fromDTOs(dtos)

	queryDTOs, err := r.ListQueryDTOs(ctx, search)
	require.NoError(t, err)
	got[orderquery.StrategyQueryDTO] = fromQueryDTOs(queryDTOs)

	queryDTOs, err = r.ListQueryDTOsBatched(ctx, search)
	require.NoError(t, err)
	got[orderquery.StrategyQueryDTOBatched] = fromQueryDTOs(queryDTOs)

	queryDTOs, err = r.ListFlat(ctx, search)
	require.NoError(t, err)
	got[orderquery.StrategyFlat] = fromQueryDTOs(queryDTOs)

	return got
}

func TestAllStrategiesReturnSameOrders(t *testing.T) {
	f := newFixture(t, 100, nil)
	seed := f.shop.SeedDefault(t)
	// 再加一个三条明细的订单,和已有订单共用商品
	f.shop.Order(t, seed.UserA, []uint{seed.JPA1, seed.Spring1, seed.Spring2}, []int{1, 1, 1})

	searches := map[string]order.Search{
		"全部":   {},
		"按会员名": {MemberName: "userA"},
		"按状态":  {Status: order.OrderStatusOrdered},
		"无匹配":  {MemberName: "nobody"},
	}

	for name, search := range searches {
		t.Run(name, func(t *testing.T) {
			got := readAll(t, f.reader, search)
			want := got[orderquery.StrategyLazyDTO]

			for strategy, orders := range got {
				assert.Equal(t, want, orders, strategy)
			}
		})
	}

	all := readAll(t, f.reader, order.Search{})[orderquery.StrategyLazyDTO]
	require.Len(t, all, 3)
	assert.Equal(t, "userA", all[0].Name)
	assert.Equal(t, []orderquery.OrderItemDTO{
		{ItemName: "JPA1 BOOK", OrderPrice: 10000, Count: 1},
		{ItemName: "JPA2 BOOK", OrderPrice: 20000, Count: 2},
	}, all[0].Items)
	assert.Equal(t, address.New("진주", "2", "2222"), all[1].Address)
	assert.Len(t, all[2].Items, 3)
}

func TestFetchJoinEqualsLazyDTO(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, nil)
	f.shop.SeedDefault(t)

	lazy, err := f.reader.ListDTOs(ctx, order.Search{})
	require.NoError(t, err)

	joined, err := f.reader.ListWithFetchJoin(ctx, order.Search{})
	require.NoError(t, err)
	assert.Equal(t, lazy, joined, "去重后与懒加载结果完全一致")

	flat, err := f.reader.ListFlat(ctx, order.Search{})
	require.NoError(t, err)
	assert.Equal(t, fromDTOs(lazy), fromQueryDTOs(flat), "归组后与懒加载结果完全一致")
}

func TestOrderWithoutItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, nil)
	seed := f.shop.SeedDefault(t)
	f.shop.Exec(t, "DELETE FROM order_items WHERE order_id = ?", seed.OrderA)

	got := readAll(t, f.reader, order.Search{})
	for strategy, orders := range got {
		require.Len(t, orders, 2, strategy)
		assert.Empty(t, orders[0].Items, strategy)
		assert.Len(t, orders[1].Items, 2, strategy)
	}

	flat, err := f.reader.ListFlat(ctx, order.Search{})
	require.NoError(t, err)
	assert.NotNil(t, flat[0].OrderItems, "没有明细时输出空数组")
}

func TestQueryCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, nil)
	f.shop.SeedDefault(t)
	all := order.Search{}

	tests := []struct {
		name string
		read func() error
		want int
	}{
		{"懒加载实体 1+N×3+ΣM", func() error { _, err := f.reader.ListEntities(ctx, all); return err }, 11},
		{"懒加载DTO", func() error { _, err := f.reader.ListDTOs(ctx, all); return err }, 11},
		{"JOIN全部关联", func() error { _, err := f.reader.ListWithFetchJoin(ctx, all); return err }, 1},
		{"批量加载", func() error { _, err := f.reader.ListPaged(ctx, all, order.NewPage(0, 10)); return err }, 3},
		{"DTO逐个查明细", func() error { _, err := f.reader.ListQueryDTOs(ctx, all); return err }, 3},
		{"DTO批量查明细", func() error { _, err := f.reader.ListQueryDTOsBatched(ctx, all); return err }, 2},
		{"扁平查询", func() error { _, err := f.reader.ListFlat(ctx, all); return err }, 1},
		{"简单订单懒加载", func() error { _, err := f.reader.ListSimpleEntities(ctx, all); return err }, 5},
		{"简单订单DTO", func() error { _, err := f.reader.ListSimpleDTOs(ctx, all); return err }, 5},
		{"简单订单JOIN", func() error { _, err := f.reader.ListSimpleWithFetchJoin(ctx, all); return err }, 1},
		{"简单订单直接查询", func() error { _, err := f.reader.ListSimpleQueryDTOs(ctx, all); return err }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.read())
			assert.Equal(t, tt.want, f.lastQueries(t))
		})
	}

	t.Run("会员名过滤的子查询不单独计数", func(t *testing.T) {
		byName := order.Search{MemberName: "userA"}

		dtos, err := f.reader.ListQueryDTOsBatched(ctx, byName)
		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, 2, f.lastQueries(t))

		flat, err := f.reader.ListFlat(ctx, byName)
		require.NoError(t, err)
		require.Len(t, flat, 1)
		assert.Len(t, flat[0].OrderItems, 2)
		assert.Equal(t, 1, f.lastQueries(t))

		paged, err := f.reader.ListPaged(ctx, byName, order.NewPage(0, 10))
		require.NoError(t, err)
		require.Len(t, paged, 1)
		assert.Equal(t, 3, f.lastQueries(t))
	})

	t.Run("没有订单时DTO批量查询只有1条SQL", func(t *testing.T) {
		dtos, err := f.reader.ListQueryDTOsBatched(ctx, order.Search{MemberName: "nobody"})
		require.NoError(t, err)
		assert.Empty(t, dtos)
		assert.Equal(t, 1, f.lastQueries(t))
	})
}

func TestBatchFetchQueryCountDoesNotGrowWithOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, nil)
	seed := f.shop.SeedDefault(t)
	for i := 0; i < 3; i++ {
		f.shop.Order(t, seed.UserB, []uint{seed.JPA1, seed.JPA2}, []int{1, 1})
	}

	// 5个订单,4种商品,批量大小2:1 + ⌈5/2⌉ + ⌈4/2⌉
	dtos, err := f.reader.ListPaged(ctx, order.Search{}, order.NewPage(0, 100))
	require.NoError(t, err)
	assert.Len(t, dtos, 5)
	assert.Equal(t, 1+3+2, f.lastQueries(t))

	// 懒加载随订单数线性增长
	_, err = f.reader.ListDTOs(ctx, order.Search{})
	require.NoError(t, err)
	assert.Equal(t, 1+5*3+10, f.lastQueries(t))
}

func TestPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, nil)
	seed := f.shop.SeedDefault(t)
	for i := 0; i < 3; i++ {
		f.shop.Order(t, seed.UserA, []uint{seed.JPA1}, []int{1})
	}

	all, err := f.reader.ListPaged(ctx, order.Search{}, order.NewPage(0, 100))
	require.NoError(t, err)
	require.Len(t, all, 5)

	var paged []orderquery.OrderDTO
	for offset := 0; offset < 6; offset += 2 {
		page, err := f.reader.ListPaged(ctx, order.Search{}, order.NewPage(offset, 2))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page), 2)
		paged = append(paged, page...)
	}
	assert.Equal(t, all, paged, "连续的分页拼起来就是完整列表,不重叠")

	for i := 1; i < len(paged); i++ {
		assert.Less(t, paged[i-1].OrderID, paged[i].OrderID)
	}

	beyond, err := f.reader.ListPaged(ctx, order.Search{}, order.NewPage(10, 2))
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestInvalidConditionIssuesNoQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, nil)
	f.shop.SeedDefault(t)

	badStatus := order.Search{Status: "SHIPPED"}
	longName := order.Search{MemberName: string(make([]rune, order.MaxMemberNameLength+1))}

	_, err := f.reader.ListEntities(ctx, badStatus)
	assert.ErrorIs(t, err, order.ErrInvalidSearch)
	_, err = f.reader.ListFlat(ctx, longName)
	assert.ErrorIs(t, err, order.ErrInvalidSearch)
	_, err = f.reader.ListSimpleQueryDTOs(ctx, badStatus)
	assert.ErrorIs(t, err, order.ErrInvalidSearch)

	_, err = f.reader.ListPaged(ctx, order.Search{}, order.Page{Offset: -1, Limit: 10})
	assert.ErrorIs(t, err, order.ErrInvalidPage)
	_, err = f.reader.ListPaged(ctx, order.Search{}, order.Page{Offset: 0, Limit: 0})
	assert.ErrorIs(t, err, order.ErrInvalidPage)
	_, err = f.reader.ListPaged(ctx, order.Search{}, order.NewPage(0, f.reader.MaxLimit()+1))
	assert.ErrorIs(t, err, order.ErrInvalidPage)

	assert.Empty(t, f.recorder.Ended(), "校验失败时不开启读取")
}

func TestIntegrityErrors(t *testing.T) {
	ctx := context.Background()

	type read func(r *orderquery.Reader) error
	withItems := map[string]read{
		orderquery.StrategyLazyEntity: func(r *orderquery.Reader) error { _, err := r.ListEntities(ctx, order.Search{}); return err },
		orderquery.StrategyLazyDTO:    func(r *orderquery.Reader) error { _, err := r.ListDTOs(ctx, order.Search{}); return err },
		orderquery.StrategyFetchJoin:  func(r *orderquery.Reader) error { _, err := r.ListWithFetchJoin(ctx, order.Search{}); return err },
		orderquery.StrategyBatchFetch: func(r *orderquery.Reader) error {
			_, err := r.ListPaged(ctx, order.Search{}, order.NewPage(0, 10))
			return err
		},
		orderquery.StrategyQueryDTO:        func(r *orderquery.Reader) error { _, err := r.ListQueryDTOs(ctx, order.Search{}); return err },
		orderquery.StrategyQueryDTOBatched: func(r *orderquery.Reader) error { _, err := r.ListQueryDTOsBatched(ctx, order.Search{}); return err },
		orderquery.StrategyFlat:            func(r *orderquery.Reader) error { _, err := r.ListFlat(ctx, order.Search{}); return err },
	}
	toOneOnly := map[string]read{
		orderquery.StrategySimpleLazyEntity: func(r *orderquery.Reader) error { _, err := r.ListSimpleEntities(ctx, order.Search{}); return err },
		orderquery.StrategySimpleLazyDTO:    func(r *orderquery.Reader) error { _, err := r.ListSimpleDTOs(ctx, order.Search{}); return err },
		orderquery.StrategySimpleFetchJoin:  func(r *orderquery.Reader) error { _, err := r.ListSimpleWithFetchJoin(ctx, order.Search{}); return err },
		orderquery.StrategySimpleQueryDTO:   func(r *orderquery.Reader) error { _, err := r.ListSimpleQueryDTOs(ctx, order.Search{}); return err },
	}
	everything := make(map[string]read)
	for k, v := range withItems {
		everything[k] = v
	}
	for k, v := range toOneOnly {
		everything[k] = v
	}

	for strategy, readFn := range everything {
		t.Run("会员缺失/"+strategy, func(t *testing.T) {
			f := newFixture(t, 100, nil)
			seed := f.shop.SeedDefault(t)
			f.shop.Exec(t, "DELETE FROM members WHERE id = ?", seed.UserB)

			assert.ErrorIs(t, readFn(f.reader), order.ErrMemberMissing)
		})

		t.Run("配送信息缺失/"+strategy, func(t *testing.T) {
			f := newFixture(t, 100, nil)
			seed := f.shop.SeedDefault(t)
			o, err := f.shop.Orders.FindByID(ctx, seed.OrderB)
			require.NoError(t, err)
			f.shop.Exec(t, "DELETE FROM deliveries WHERE id = ?", o.DeliveryID)

			assert.ErrorIs(t, readFn(f.reader), order.ErrDeliveryMissing)
		})
	}

	for strategy, readFn := range withItems {
		t.Run("商品缺失/"+strategy, func(t *testing.T) {
			f := newFixture(t, 100, nil)
			seed := f.shop.SeedDefault(t)
			f.shop.Exec(t, "DELETE FROM items WHERE id = ?", seed.JPA2)

			err := readFn(f.reader)
			assert.ErrorIs(t, err, order.ErrItemMissing)
			assert.NotErrorIs(t, err, order.ErrMemberMissing)
		})
	}

	for strategy, readFn := range toOneOnly {
		t.Run("简单订单不读取商品/"+strategy, func(t *testing.T) {
			f := newFixture(t, 100, nil)
			seed := f.shop.SeedDefault(t)
			f.shop.Exec(t, "DELETE FROM items WHERE id = ?", seed.JPA2)

			assert.NoError(t, readFn(f.reader))
		})
	}
}

// fakeCache 内存版ViewCache
type fakeCache struct {
	data map[order.Page][]orderquery.OrderDTO
	sets int
	err  error
}

func (c *fakeCache) Get(ctx context.Context, search order.Search, page order.Page, dst interface{}) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	v, ok := c.data[page]
	if !ok {
		return false, nil
	}
	*dst.(*[]orderquery.OrderDTO) = v
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, search order.Search, page order.Page, value interface{}) error {
	if c.err != nil {
		return c.err
	}
	c.sets++
	c.data[page] = value.([]orderquery.OrderDTO)
	return nil
}

func TestPagedReadUsesCache(t *testing.T) {
	ctx := context.Background()
	cache := &fakeCache{data: map[order.Page][]orderquery.OrderDTO{}}
	f := newFixture(t, 100, cache)
	f.shop.SeedDefault(t)
	page := order.NewPage(0, 10)

	first, err := f.reader.ListPaged(ctx, order.Search{}, page)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Len(t, f.recorder.Ended(), 1)

	second, err := f.reader.ListPaged(ctx, order.Search{}, page)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, f.recorder.Ended(), 1, "命中缓存不访问数据库")

	t.Run("缓存故障时回源数据库", func(t *testing.T) {
		cache.err = errors.New("connection refused")
		defer func() { cache.err = nil }()

		got, err := f.reader.ListPaged(ctx, order.Search{}, page)
		require.NoError(t, err)
		assert.Equal(t, first, got)
		assert.Len(t, f.recorder.Ended(), 2)
	})

	t.Run("熔断中跳过缓存", func(t *testing.T) {
		cache.err = circuitbreaker.ErrOpenState
		defer func() { cache.err = nil }()

		before := testutil.ToFloat64(metrics.OrderViewCacheRequests.WithLabelValues("bypass"))
		got, err := f.reader.ListPaged(ctx, order.Search{}, page)
		require.NoError(t, err)
		assert.Equal(t, first, got)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.OrderViewCacheRequests.WithLabelValues("bypass")))
	})

	t.Run("非法分页不查询缓存", func(t *testing.T) {
		cache.err = errors.New("不应被调用")
		defer func() { cache.err = nil }()

		_, err := f.reader.ListPaged(ctx, order.Search{}, order.Page{Limit: -1})
		assert.ErrorIs(t, err, order.ErrInvalidPage)
	})
}

func TestReadSpanAttributes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, nil)
	f.shop.SeedDefault(t)

	_, err := f.reader.ListWithFetchJoin(ctx, order.Search{})
	require.NoError(t, err)

	spans := f.recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "orderquery."+orderquery.StrategyFetchJoin, spans[0].Name())

	attrs := make(map[string]string)
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, orderquery.StrategyFetchJoin, attrs["order.strategy"])
	assert.Equal(t, "1", attrs["db.statement_count"])
}

func TestReadLogCarriesTraceContext(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, nil)
	f.shop.SeedDefault(t)

	l, hook := logtest.NewNullLogger()
	l.SetLevel(log.DebugLevel)
	cfg := config.QueryConfig{DefaultBatchFetchSize: 100, DefaultLimit: 100, MaxLimit: 1000}
	reader := orderquery.NewReader(f.shop.OrderQuery, f.shop.Members, f.shop.Items, f.shop.TxManager, nil, cfg, l)

	_, err := reader.ListQueryDTOsBatched(ctx, order.Search{})
	require.NoError(t, err)

	spans := f.recorder.Ended()
	require.Len(t, spans, 1)
	sc := spans[0].SpanContext()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, orderquery.StrategyQueryDTOBatched, entry.Data["strategy"])
	assert.Equal(t, 2, entry.Data["queries"])
	assert.Equal(t, sc.TraceID().String(), entry.Data["trace_id"])
	assert.Equal(t, sc.SpanID().String(), entry.Data["span_id"])
}
