package order

import (
	"context"

	"github.com/xiebiao/jpashop/internal/domain/item"
	"github.com/xiebiao/jpashop/internal/domain/member"
)

// Service 订单领域服务
type Service interface {
	// Order 下单:会员购买单个商品,返回订单ID
	Order(ctx context.Context, memberID, itemID uint, count int) (uint, error)

	// CancelOrder 取消订单并恢复库存
	CancelOrder(ctx context.Context, orderID uint) error

	// FindOrders 按条件查询订单
	FindOrders(ctx context.Context, search Search) ([]*Order, error)
}

type service struct {
	orders  Repository
	members member.Repository
	items   item.Repository
	tx      Transactor
}

// NewService 创建订单领域服务
func NewService(orders Repository, members member.Repository, items item.Repository, tx Transactor) Service {
	return &service{
		orders:  orders,
		members: members,
		items:   items,
		tx:      tx,
	}
}

// Order 下单
// 教学要点:防止超卖
// 1. 在事务中用SELECT FOR UPDATE锁定商品行
// 2. 锁定后再检查并扣减库存
// 3. 订单价格使用锁定时商品的当前价格
// 4. 任一步骤失败整个事务回滚,订单不会创建,库存不会减少
func (s *service) Order(ctx context.Context, memberID, itemID uint, count int) (uint, error) {
	if count <= 0 {
		return 0, ErrInvalidQuantity
	}

	var orderID uint
	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		m, err := s.members.FindByID(txCtx, memberID)
		if err != nil {
			return err
		}

		it, err := s.items.LockByID(txCtx, itemID)
		if err != nil {
			return err
		}

		// 配送地址取会员当前地址
		delivery := NewDelivery(m.Address)

		orderItem, err := CreateOrderItem(it, it.Price, count)
		if err != nil {
			return err
		}

		o, err := CreateOrder(m, delivery, orderItem)
		if err != nil {
			return err
		}

		if err := s.items.Update(txCtx, it); err != nil {
			return err
		}
		if err := s.orders.Create(txCtx, o); err != nil {
			return err
		}

		orderID = o.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// CancelOrder 取消订单
// 明细对应的商品行同样先加锁再恢复库存
func (s *service) CancelOrder(ctx context.Context, orderID uint) error {
	return s.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		for _, oi := range o.Items {
			it, err := s.items.LockByID(txCtx, oi.ItemID)
			if err != nil {
				return err
			}
			oi.Item = it
		}

		if err := o.Cancel(); err != nil {
			return err
		}

		for _, oi := range o.Items {
			if err := s.items.Update(txCtx, oi.Item); err != nil {
				return err
			}
		}
		return s.orders.Update(txCtx, o)
	})
}

// FindOrders 按条件查询订单
func (s *service) FindOrders(ctx context.Context, search Search) ([]*Order, error) {
	if err := search.Validate(); err != nil {
		return nil, err
	}
	return s.orders.FindAll(ctx, search)
}
