package order

import (
	"context"
	"time"

	"github.com/xiebiao/jpashop/internal/domain/address"
)

// OrderView 订单直接查询结果
// 只包含订单列表需要的标量字段,不还原实体
type OrderView struct {
	OrderID     uint
	MemberName  string
	OrderDate   time.Time
	OrderStatus OrderStatus
	Address     address.Address // 配送地址
}

// OrderItemView 订单明细直接查询结果
type OrderItemView struct {
	OrderID    uint
	ItemName   string
	OrderPrice int64
	Count      int
}

// OrderFlatView 订单与明细JOIN后的一行
// 一个订单有几条明细就有几行,订单字段在这些行里重复
// 没有明细的订单只有一行,OrderItemID为0
type OrderFlatView struct {
	OrderView
	OrderItemID uint
	ItemName    string
	OrderPrice  int64
	Count       int
}

// QueryRepository 订单读模型仓储
// 教学要点:
// 1. 每个方法对应一种取数方式(单表、to-one JOIN、全JOIN、IN批量、直接查DTO)
// 2. 订单列表按订单ID升序,明细按明细ID升序
// 3. 基于JOIN的方法使用LEFT JOIN,引用缺失时返回ErrMemberMissing/ErrDeliveryMissing/ErrItemMissing
type QueryRepository interface {
	// FindOrders 只查询订单表(关联未加载)
	FindOrders(ctx context.Context, search Search) ([]*Order, error)

	// FindDelivery 查询单个配送信息,不存在时返回ErrDeliveryMissing
	FindDelivery(ctx context.Context, id uint) (*Delivery, error)

	// FindOrderItems 查询单个订单的明细(Item未加载)
	FindOrderItems(ctx context.Context, orderID uint) ([]*OrderItem, error)

	// FindWithMemberDelivery 一条SQL JOIN会员和配送信息
	// page为nil时不分页
	FindWithMemberDelivery(ctx context.Context, search Search, page *Page) ([]*Order, error)

	// FindOrderItemsByOrderIDs 一条IN查询加载多个订单的明细(Item未加载)
	FindOrderItemsByOrderIDs(ctx context.Context, orderIDs []uint) ([]*OrderItem, error)

	// FindWithItemsJoined 一条SQL JOIN会员、配送、明细、商品
	// 结果行按订单重复,在内存中按订单ID去重后返回完整聚合
	FindWithItemsJoined(ctx context.Context, search Search) ([]*Order, error)

	// FindOrderViews 直接查询订单列表字段
	FindOrderViews(ctx context.Context, search Search) ([]OrderView, error)

	// FindOrderItemViews 一条IN查询取多个订单的明细字段
	FindOrderItemViews(ctx context.Context, orderIDs []uint) ([]OrderItemView, error)

	// FindOrderFlatViews 一条SQL JOIN全部表,每条明细一行
	FindOrderFlatViews(ctx context.Context, search Search) ([]OrderFlatView, error)
}
