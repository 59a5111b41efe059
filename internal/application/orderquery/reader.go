// Package orderquery 订单列表读取
//
// 同一份订单数据提供多种加载方式,它们返回的内容相同,
// 区别在于发出多少条SQL、能否分页、返回实体还是DTO:
//
//	策略                  SQL条数              分页
//	ListEntities          1 + 3N + ΣM          否
//	ListDTOs              同上                 否
//	ListWithFetchJoin     1                    否(JOIN一对多,行数膨胀)
//	ListPaged             1 + ⌈N/B⌉ + ⌈K/B⌉    是(推荐)
//	ListQueryDTOs         1 + N                否
//	ListQueryDTOsBatched  2(没有订单时1)       否
//	ListFlat              1                    否
//
// N为订单数,M为单个订单的明细数,K为去重后的商品数,B为批量大小。
// 每次读取都在一个只读事务中完成,懒加载不会跑到事务之外。
package orderquery

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/jpashop/internal/domain/item"
	"github.com/xiebiao/jpashop/internal/domain/member"
	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/internal/infrastructure/config"
	"github.com/xiebiao/jpashop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/jpashop/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/jpashop/pkg/errors"
	"github.com/xiebiao/jpashop/pkg/metrics"
	"github.com/xiebiao/jpashop/pkg/tracing"
)

const tracerName = "orderquery"

// DefaultMaxLimit 单页最大订单数
const DefaultMaxLimit = 1000

// ReadOnlyRunner 只读事务
type ReadOnlyRunner interface {
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// ViewCache 分页订单列表缓存
// nil表示不启用缓存
type ViewCache interface {
	Get(ctx context.Context, search order.Search, page order.Page, dst interface{}) (bool, error)
	Set(ctx context.Context, search order.Search, page order.Page, value interface{}) error
}

// Reader 订单列表读取
type Reader struct {
	orders  order.QueryRepository
	members member.Repository
	items   item.Repository
	tx      ReadOnlyRunner
	cache   ViewCache

	batchSize int
	maxLimit  int
	logger    *log.Entry
}

// NewReader 创建订单列表读取器
func NewReader(
	orders order.QueryRepository,
	members member.Repository,
	items item.Repository,
	tx ReadOnlyRunner,
	cache ViewCache,
	cfg config.QueryConfig,
	logger *log.Logger,
) *Reader {
	metrics.InitMetrics()

	r := &Reader{
		orders:    orders,
		members:   members,
		items:     items,
		tx:        tx,
		cache:     cache,
		batchSize: cfg.DefaultBatchFetchSize,
		maxLimit:  cfg.MaxLimit,
		logger:    logger.WithField("component", "orderquery"),
	}
	if r.batchSize <= 0 {
		r.batchSize = DefaultBatchSize
	}
	if r.maxLimit <= 0 {
		r.maxLimit = DefaultMaxLimit
	}
	return r
}

// MaxLimit 单页最大订单数
func (r *Reader) MaxLimit() int {
	return r.maxLimit
}

// =========================================
// 完整订单(含明细)
// =========================================

// ListEntities 懒加载返回实体
// 先查订单表,再逐个订单查会员、配送、明细,逐条明细查商品
// 只适合内部使用:实体不应直接作为API响应
func (r *Reader) ListEntities(ctx context.Context, search order.Search) ([]*order.Order, error) {
	var orders []*order.Order
	err := r.read(ctx, StrategyLazyEntity, search, func(ctx context.Context) error {
		var err error
		orders, err = r.loadLazily(ctx, search, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListDTOs 懒加载后转换为DTO
// SQL条数和ListEntities一样,只是响应结构与实体解耦
func (r *Reader) ListDTOs(ctx context.Context, search order.Search) ([]OrderDTO, error) {
	var dtos []OrderDTO
	err := r.read(ctx, StrategyLazyDTO, search, func(ctx context.Context) error {
		orders, err := r.loadLazily(ctx, search, true)
		if err != nil {
			return err
		}
		dtos = newOrderDTOs(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// ListWithFetchJoin 一条SQL JOIN全部关联
// 教学要点:
// 1. 只有一条SQL,但JOIN一对多后每个订单重复"明细数"行,由仓储按订单ID去重
// 2. 去重发生在整个结果集读入内存之后,所以这种方式不能分页
func (r *Reader) ListWithFetchJoin(ctx context.Context, search order.Search) ([]OrderDTO, error) {
	var dtos []OrderDTO
	err := r.read(ctx, StrategyFetchJoin, search, func(ctx context.Context) error {
		orders, err := r.orders.FindWithItemsJoined(ctx, search)
		if err != nil {
			return err
		}
		dtos = newOrderDTOs(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// ListPaged JOIN to-one关联分页,明细和商品用IN批量加载
// 教学要点:
// 1. 第一条SQL只JOIN会员和配送,每个订单一行,OFFSET/LIMIT准确
// 2. 明细按订单ID分批IN查询,商品按去重后的商品ID分批IN查询
// 3. SQL条数与订单数无关:1 + ⌈N/B⌉ + ⌈K/B⌉
func (r *Reader) ListPaged(ctx context.Context, search order.Search, page order.Page) ([]OrderDTO, error) {
	if err := r.validate(StrategyBatchFetch, search, &page); err != nil {
		return nil, err
	}

	if dtos, ok := r.cached(ctx, search, page); ok {
		return dtos, nil
	}

	var dtos []OrderDTO
	err := r.read(ctx, StrategyBatchFetch, search, func(ctx context.Context) error {
		orders, err := r.orders.FindWithMemberDelivery(ctx, search, &page)
		if err != nil {
			return err
		}
		if err := r.batchLoadItems(ctx, orders); err != nil {
			return err
		}
		dtos = newOrderDTOs(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.store(ctx, search, page, dtos)
	return dtos, nil
}

// ListQueryDTOs 直接查询DTO,逐个订单查询明细
// 订单行只查需要的列,但明细仍是1+N
func (r *Reader) ListQueryDTOs(ctx context.Context, search order.Search) ([]OrderQueryDTO, error) {
	var dtos []OrderQueryDTO
	err := r.read(ctx, StrategyQueryDTO, search, func(ctx context.Context) error {
		views, err := r.orders.FindOrderViews(ctx, search)
		if err != nil {
			return err
		}

		dtos = make([]OrderQueryDTO, len(views))
		for i, v := range views {
			dtos[i] = newOrderQueryDTO(v)
			itemViews, err := r.orders.FindOrderItemViews(ctx, []uint{v.OrderID})
			if err != nil {
				return err
			}
			for _, iv := range itemViews {
				dtos[i].OrderItems = append(dtos[i].OrderItems, newOrderItemQueryDTO(iv))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// ListQueryDTOsBatched 直接查询DTO,明细一条IN查询
// 教学要点:
// 1. 第一条SQL查订单行,收集订单ID
// 2. 第二条SQL用IN一次取回所有明细
// 3. 明细按订单ID建索引后挂回订单,整个过程固定2条SQL
func (r *Reader) ListQueryDTOsBatched(ctx context.Context, search order.Search) ([]OrderQueryDTO, error) {
	var dtos []OrderQueryDTO
	err := r.read(ctx, StrategyQueryDTOBatched, search, func(ctx context.Context) error {
		views, err := r.orders.FindOrderViews(ctx, search)
		if err != nil {
			return err
		}

		dtos = make([]OrderQueryDTO, len(views))
		if len(views) == 0 {
			return nil
		}

		orderIDs := make([]uint, len(views))
		for i, v := range views {
			dtos[i] = newOrderQueryDTO(v)
			orderIDs[i] = v.OrderID
		}

		itemViews, err := r.orders.FindOrderItemViews(ctx, orderIDs)
		if err != nil {
			return err
		}

		byOrder := make(map[uint][]OrderItemQueryDTO, len(views))
		for _, iv := range itemViews {
			byOrder[iv.OrderID] = append(byOrder[iv.OrderID], newOrderItemQueryDTO(iv))
		}
		for i := range dtos {
			if items, ok := byOrder[dtos[i].OrderID]; ok {
				dtos[i].OrderItems = items
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// flatKey 扁平行的归组键
type flatKey struct {
	orderID   uint
	name      string
	orderDate int64
	status    order.OrderStatus
	city      string
	street    string
	zipcode   string
}

// ListFlat 一条SQL取回扁平行,在内存中按订单归组
// 归组键是订单的全部标量字段,结果与ListDTOs一致
// 行数等于明细数,不能按订单分页
func (r *Reader) ListFlat(ctx context.Context, search order.Search) ([]OrderQueryDTO, error) {
	var dtos []OrderQueryDTO
	err := r.read(ctx, StrategyFlat, search, func(ctx context.Context) error {
		rows, err := r.orders.FindOrderFlatViews(ctx, search)
		if err != nil {
			return err
		}

		dtos = []OrderQueryDTO{}
		index := make(map[flatKey]int)
		for _, row := range rows {
			key := flatKey{
				orderID:   row.OrderID,
				name:      row.MemberName,
				orderDate: row.OrderDate.UnixNano(),
				status:    row.OrderStatus,
				city:      row.Address.City,
				street:    row.Address.Street,
				zipcode:   row.Address.Zipcode,
			}
			i, ok := index[key]
			if !ok {
				i = len(dtos)
				index[key] = i
				dtos = append(dtos, newOrderQueryDTO(row.OrderView))
			}
			if row.OrderItemID == 0 {
				continue
			}
			dtos[i].OrderItems = append(dtos[i].OrderItems, OrderItemQueryDTO{
				OrderID:    row.OrderID,
				ItemName:   row.ItemName,
				OrderPrice: row.OrderPrice,
				Count:      row.Count,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// =========================================
// 简单订单(只含to-one关联)
// =========================================

// ListSimpleEntities 懒加载会员和配送,返回实体
func (r *Reader) ListSimpleEntities(ctx context.Context, search order.Search) ([]*order.Order, error) {
	var orders []*order.Order
	err := r.read(ctx, StrategySimpleLazyEntity, search, func(ctx context.Context) error {
		var err error
		orders, err = r.loadLazily(ctx, search, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListSimpleDTOs 懒加载会员和配送,转换为DTO(1 + 2N)
func (r *Reader) ListSimpleDTOs(ctx context.Context, search order.Search) ([]SimpleOrderDTO, error) {
	var dtos []SimpleOrderDTO
	err := r.read(ctx, StrategySimpleLazyDTO, search, func(ctx context.Context) error {
		orders, err := r.loadLazily(ctx, search, false)
		if err != nil {
			return err
		}
		dtos = make([]SimpleOrderDTO, len(orders))
		for i, o := range orders {
			dtos[i] = newSimpleOrderDTO(o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// ListSimpleWithFetchJoin 一条SQL JOIN会员和配送
func (r *Reader) ListSimpleWithFetchJoin(ctx context.Context, search order.Search) ([]SimpleOrderDTO, error) {
	var dtos []SimpleOrderDTO
	err := r.read(ctx, StrategySimpleFetchJoin, search, func(ctx context.Context) error {
		orders, err := r.orders.FindWithMemberDelivery(ctx, search, nil)
		if err != nil {
			return err
		}
		dtos = make([]SimpleOrderDTO, len(orders))
		for i, o := range orders {
			dtos[i] = newSimpleOrderDTO(o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// ListSimpleQueryDTOs 直接查询需要的列
func (r *Reader) ListSimpleQueryDTOs(ctx context.Context, search order.Search) ([]SimpleOrderDTO, error) {
	var dtos []SimpleOrderDTO
	err := r.read(ctx, StrategySimpleQueryDTO, search, func(ctx context.Context) error {
		views, err := r.orders.FindOrderViews(ctx, search)
		if err != nil {
			return err
		}
		dtos = make([]SimpleOrderDTO, len(views))
		for i, v := range views {
			dtos[i] = SimpleOrderDTO{
				OrderID:     v.OrderID,
				Name:        v.MemberName,
				OrderDate:   v.OrderDate,
				OrderStatus: v.OrderStatus,
				Address:     v.Address,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// =========================================
// 加载
// =========================================

// loadLazily 逐个订单加载关联
// withItems为false时只加载会员和配送
func (r *Reader) loadLazily(ctx context.Context, search order.Search, withItems bool) ([]*order.Order, error) {
	orders, err := r.orders.FindOrders(ctx, search)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		m, err := r.members.FindByID(ctx, o.MemberID)
		if err != nil {
			if errors.Is(err, member.ErrMemberNotFound) {
				return nil, memberMissing(o)
			}
			return nil, err
		}
		o.Member = m

		d, err := r.orders.FindDelivery(ctx, o.DeliveryID)
		if err != nil {
			if errors.Is(err, order.ErrDeliveryMissing) {
				return nil, deliveryMissing(o)
			}
			return nil, err
		}
		o.Delivery = d

		if !withItems {
			continue
		}

		o.Items, err = r.orders.FindOrderItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		for _, oi := range o.Items {
			it, err := r.items.FindByID(ctx, oi.ItemID)
			if err != nil {
				if errors.Is(err, item.ErrItemNotFound) {
					return nil, itemMissing(oi)
				}
				return nil, err
			}
			oi.Item = it
		}
	}
	return orders, nil
}

// batchLoadItems 分批加载明细和商品
func (r *Reader) batchLoadItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uint]*order.Order, len(orders))
	orderIDs := make([]uint, len(orders))
	for i, o := range orders {
		o.Items = []*order.OrderItem{}
		byID[o.ID] = o
		orderIDs[i] = o.ID
	}

	var itemIDs []uint
	for _, ids := range chunk(orderIDs, r.batchSize) {
		lines, err := r.orders.FindOrderItemsByOrderIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, oi := range lines {
			o := byID[oi.OrderID]
			o.Items = append(o.Items, oi)
			itemIDs = append(itemIDs, oi.ItemID)
		}
	}

	itemsByID := make(map[uint]*item.Item)
	for _, ids := range chunk(distinctSorted(itemIDs), r.batchSize) {
		found, err := r.items.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, it := range found {
			itemsByID[it.ID] = it
		}
	}

	for _, o := range orders {
		for _, oi := range o.Items {
			it, ok := itemsByID[oi.ItemID]
			if !ok {
				return itemMissing(oi)
			}
			oi.Item = it
		}
	}
	return nil
}

// =========================================
// 公共流程
// =========================================

// validate 在发出任何SQL之前校验条件
func (r *Reader) validate(strategy string, search order.Search, page *order.Page) error {
	err := search.Validate()
	if err == nil && page != nil {
		err = page.Validate(r.maxLimit)
	}
	if err != nil {
		metrics.IncCounterVec(metrics.OrderReadErrors, map[string]string{"strategy": strategy, "reason": "validation"})
	}
	return err
}

// read 校验条件后在只读事务中执行fn,记录SQL条数、耗时和Span
func (r *Reader) read(ctx context.Context, strategy string, search order.Search, fn func(ctx context.Context) error) error {
	if err := r.validate(strategy, search, nil); err != nil {
		return err
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "orderquery."+strategy)
	ctx, counter := mysql.WithQueryCounter(ctx)
	start := time.Now()

	err := r.tx.ReadOnly(ctx, fn)

	elapsed := time.Since(start)
	queries := counter.Count()
	labels := map[string]string{"strategy": strategy}

	span.SetAttributes(
		attribute.String("order.strategy", strategy),
		attribute.Int("db.statement_count", queries),
	)
	tracing.EndSpan(span, err)

	metrics.ObserveHistogramVec(metrics.OrderReadQueries, labels, float64(queries))
	metrics.ObserveHistogramVec(metrics.OrderReadDuration, labels, elapsed.Seconds())

	entry := r.logger.WithFields(log.Fields{
		"strategy":    strategy,
		"queries":     queries,
		"duration_ms": elapsed.Milliseconds(),
		"trace_id":    tracing.ExtractTraceID(ctx),
		"span_id":     tracing.ExtractSpanID(ctx),
	})
	if err != nil {
		reason := "internal"
		if apperrors.IsCode(err, apperrors.ErrCodeAggregateBroken) {
			reason = "integrity"
		}
		metrics.IncCounterVec(metrics.OrderReadErrors, map[string]string{"strategy": strategy, "reason": reason})
		entry.WithError(err).Warn("订单读取失败")
		return err
	}

	entry.Debug("订单读取完成")
	return nil
}

func (r *Reader) cached(ctx context.Context, search order.Search, page order.Page) ([]OrderDTO, bool) {
	if r.cache == nil {
		return nil, false
	}

	var dtos []OrderDTO
	hit, err := r.cache.Get(ctx, search, page, &dtos)
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		// 熔断中,跳过缓存
		metrics.IncCounterVec(metrics.OrderViewCacheRequests, map[string]string{"result": "bypass"})
		return nil, false
	case err != nil:
		// 缓存故障不影响读取,回源数据库
		metrics.IncCounterVec(metrics.OrderViewCacheRequests, map[string]string{"result": "error"})
		r.logger.WithError(err).Warn("读取订单列表缓存失败")
		return nil, false
	case hit:
		metrics.IncCounterVec(metrics.OrderViewCacheRequests, map[string]string{"result": "hit"})
		return dtos, true
	default:
		metrics.IncCounterVec(metrics.OrderViewCacheRequests, map[string]string{"result": "miss"})
		return nil, false
	}
}

func (r *Reader) store(ctx context.Context, search order.Search, page order.Page, dtos []OrderDTO) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, search, page, dtos); err != nil && !errors.Is(err, circuitbreaker.ErrOpenState) {
		r.logger.WithError(err).Warn("写入订单列表缓存失败")
	}
}

// =========================================
// 完整性错误
// =========================================

func memberMissing(o *order.Order) error {
	return apperrors.Detail(order.ErrMemberMissing, "订单%d引用的会员%d不存在", o.ID, o.MemberID)
}

func deliveryMissing(o *order.Order) error {
	return apperrors.Detail(order.ErrDeliveryMissing, "订单%d引用的配送信息%d不存在", o.ID, o.DeliveryID)
}

func itemMissing(oi *order.OrderItem) error {
	return apperrors.Detail(order.ErrItemMissing, "订单%d的明细引用的商品%d不存在", oi.OrderID, oi.ItemID)
}
