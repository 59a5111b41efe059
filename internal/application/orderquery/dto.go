package orderquery

import (
	"time"

	"github.com/xiebiao/jpashop/internal/domain/address"
	"github.com/xiebiao/jpashop/internal/domain/order"
)

// 读取策略名称
// 用作日志字段、Prometheus标签和Span名
const (
	StrategyLazyEntity      = "lazy_entity"
	StrategyLazyDTO         = "lazy_dto"
	StrategyFetchJoin       = "fetch_join"
	StrategyBatchFetch      = "batch_fetch"
	StrategyQueryDTO        = "query_dto"
	StrategyQueryDTOBatched = "query_dto_batched"
	StrategyFlat            = "flat"

	StrategySimpleLazyEntity = "simple_lazy_entity"
	StrategySimpleLazyDTO    = "simple_lazy_dto"
	StrategySimpleFetchJoin  = "simple_fetch_join"
	StrategySimpleQueryDTO   = "simple_query_dto"
)

// OrderDTO 订单响应
// 教学要点:对外只暴露响应需要的字段,不直接序列化实体
// 实体的字段一改,API就跟着变;实体间的双向引用还会导致无限递归
type OrderDTO struct {
	OrderID     uint              `json:"order_id"`
	Name        string            `json:"name"` // 会员名
	OrderDate   time.Time         `json:"order_date"`
	OrderStatus order.OrderStatus `json:"order_status"`
	Address     address.Address   `json:"address"` // 配送地址
	OrderItems  []OrderItemDTO    `json:"order_items"`
}

// OrderItemDTO 订单明细响应
type OrderItemDTO struct {
	ItemName   string `json:"item_name"`
	OrderPrice int64  `json:"order_price"`
	Count      int    `json:"count"`
}

// OrderQueryDTO 直接查询得到的订单响应
type OrderQueryDTO struct {
	OrderID     uint                `json:"order_id"`
	Name        string              `json:"name"`
	OrderDate   time.Time           `json:"order_date"`
	OrderStatus order.OrderStatus   `json:"order_status"`
	Address     address.Address     `json:"address"`
	OrderItems  []OrderItemQueryDTO `json:"order_items"`
}

// OrderItemQueryDTO 直接查询得到的订单明细
// OrderID只用于在内存中归组,不输出
type OrderItemQueryDTO struct {
	OrderID    uint   `json:"-"`
	ItemName   string `json:"item_name"`
	OrderPrice int64  `json:"order_price"`
	Count      int    `json:"count"`
}

// SimpleOrderDTO 简单订单响应(不含明细)
type SimpleOrderDTO struct {
	OrderID     uint              `json:"order_id"`
	Name        string            `json:"name"`
	OrderDate   time.Time         `json:"order_date"`
	OrderStatus order.OrderStatus `json:"order_status"`
	Address     address.Address   `json:"address"`
}

// PagedOrders 分页订单列表
type PagedOrders struct {
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
	Orders []OrderDTO `json:"orders"`
}

// newOrderDTO 实体 → 响应
// 调用方保证Member、Delivery和每条明细的Item都已加载
func newOrderDTO(o *order.Order) OrderDTO {
	dto := OrderDTO{
		OrderID:     o.ID,
		Name:        o.Member.Name,
		OrderDate:   o.OrderDate,
		OrderStatus: o.Status,
		Address:     o.Delivery.Address,
		OrderItems:  make([]OrderItemDTO, len(o.Items)),
	}
	for i, oi := range o.Items {
		dto.OrderItems[i] = OrderItemDTO{
			ItemName:   oi.Item.Name,
			OrderPrice: oi.OrderPrice,
			Count:      oi.Count,
		}
	}
	return dto
}

func newOrderDTOs(orders []*order.Order) []OrderDTO {
	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = newOrderDTO(o)
	}
	return dtos
}

func newSimpleOrderDTO(o *order.Order) SimpleOrderDTO {
	return SimpleOrderDTO{
		OrderID:     o.ID,
		Name:        o.Member.Name,
		OrderDate:   o.OrderDate,
		OrderStatus: o.Status,
		Address:     o.Delivery.Address,
	}
}

func newOrderQueryDTO(v order.OrderView) OrderQueryDTO {
	return OrderQueryDTO{
		OrderID:     v.OrderID,
		Name:        v.MemberName,
		OrderDate:   v.OrderDate,
		OrderStatus: v.OrderStatus,
		Address:     v.Address,
		OrderItems:  []OrderItemQueryDTO{},
	}
}

func newOrderItemQueryDTO(v order.OrderItemView) OrderItemQueryDTO {
	return OrderItemQueryDTO{
		OrderID:    v.OrderID,
		ItemName:   v.ItemName,
		OrderPrice: v.OrderPrice,
		Count:      v.Count,
	}
}
