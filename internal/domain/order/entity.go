package order

import (
	"time"

	"github.com/xiebiao/jpashop/internal/domain/item"
	"github.com/xiebiao/jpashop/internal/domain/member"
)

// OrderStatus 订单状态
// 教学要点:
// 1. 使用字符串存储(与接口输出一致,库里可读)
// 2. 只有两个状态:已下单、已取消
type OrderStatus string

const (
	OrderStatusOrdered   OrderStatus = "ORDERED"   // 已下单
	OrderStatusCancelled OrderStatus = "CANCELLED" // 已取消
)

// IsValid 是否为已定义的状态
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusOrdered || s == OrderStatusCancelled
}

// Order 订单实体(聚合根)
// 教学要点:
// 1. Order聚合包含:会员(引用)、配送信息、订单明细、明细对应的商品
// 2. Member/Delivery/Item是"可解析的引用":ID总是有值,对象只在读取策略加载后才非空
// 3. 不保存反向引用(Member没有订单列表,OrderItem只保存OrderID),序列化不会无限递归
type Order struct {
	ID         uint
	MemberID   uint
	Member     *member.Member
	DeliveryID uint
	Delivery   *Delivery
	Items      []*OrderItem
	OrderDate  time.Time
	Status     OrderStatus
}

// OrderItem 订单明细
// 教学要点:OrderPrice是下单时的价格快照,之后商品改价不影响历史订单
type OrderItem struct {
	ID         uint
	OrderID    uint
	ItemID     uint
	Item       *item.Item
	OrderPrice int64
	Count      int
}

// CreateOrderItem 创建订单明细并扣减库存(工厂方法)
// 库存不足时返回item.ErrInsufficientStock,商品库存保持不变
func CreateOrderItem(it *item.Item, orderPrice int64, count int) (*OrderItem, error) {
	if count <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := it.RemoveStock(count); err != nil {
		return nil, err
	}
	return &OrderItem{
		ItemID:     it.ID,
		Item:       it,
		OrderPrice: orderPrice,
		Count:      count,
	}, nil
}

// TotalPrice 明细金额
func (oi *OrderItem) TotalPrice() int64 {
	return oi.OrderPrice * int64(oi.Count)
}

// cancel 恢复商品库存
func (oi *OrderItem) cancel() error {
	if oi.Item == nil {
		return ErrItemMissing
	}
	return oi.Item.AddStock(oi.Count)
}

// CreateOrder 创建订单(工厂方法)
// 初始状态为ORDERED,下单时间为当前时间
func CreateOrder(m *member.Member, d *Delivery, items ...*OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	return &Order{
		MemberID:  m.ID,
		Member:    m,
		Delivery:  d,
		Items:     items,
		OrderDate: time.Now(),
		Status:    OrderStatusOrdered,
	}, nil
}

// Cancel 取消订单
// 业务规则:
// 1. 配送已完成(COMP)的订单不能取消
// 2. 已取消的订单不能重复取消(否则库存会被恢复两次)
// 3. 取消时恢复每个明细对应商品的库存,调用方需要先加载Delivery和Item
func (o *Order) Cancel() error {
	if o.Delivery == nil {
		return ErrDeliveryMissing
	}
	if o.Delivery.Status == DeliveryStatusComp {
		return ErrAlreadyDelivered
	}
	if o.Status == OrderStatusCancelled {
		return ErrInvalidStatusTransition
	}

	o.Status = OrderStatusCancelled
	for _, oi := range o.Items {
		if err := oi.cancel(); err != nil {
			return err
		}
	}
	return nil
}

// TotalPrice 订单总金额 = Σ(下单价格 × 数量)
func (o *Order) TotalPrice() int64 {
	var total int64
	for _, oi := range o.Items {
		total += oi.TotalPrice()
	}
	return total
}
