package mysql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/jpashop/internal/domain/address"
	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/jpashop/internal/infrastructure/persistence/mysql/mysqltest"
	apperrors "github.com/xiebiao/jpashop/pkg/errors"
)

func TestFindWithMemberDelivery(t *testing.T) {
	ctx := context.Background()
	shop := mysqltest.NewShop(t)
	seed := shop.SeedDefault(t)

	t.Run("一条SQL加载to-one关联", func(t *testing.T) {
		ctx, counter := mysql.WithQueryCounter(ctx)
		orders, err := shop.OrderQuery.FindWithMemberDelivery(ctx, order.Search{}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, counter.Count())

		require.Len(t, orders, 2)
		assert.Equal(t, "userA", orders[0].Member.Name)
		assert.Equal(t, "서울", orders[0].Delivery.Address.City)
		assert.Equal(t, "userB", orders[1].Member.Name)
		assert.Nil(t, orders[0].Items, "明细未加载")
	})

	t.Run("分页按订单切分", func(t *testing.T) {
		tests := []struct {
			name string
			page order.Page
			want []uint
		}{
			{"第一页", order.Page{Offset: 0, Limit: 1}, []uint{seed.OrderA}},
			{"第二页", order.Page{Offset: 1, Limit: 100}, []uint{seed.OrderB}},
			{"越界", order.Page{Offset: 5, Limit: 10}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				orders, err := shop.OrderQuery.FindWithMemberDelivery(ctx, order.Search{}, &tt.page)
				require.NoError(t, err)

				var ids []uint
				for _, o := range orders {
					ids = append(ids, o.ID)
				}
				assert.Equal(t, tt.want, ids)
			})
		}
	})

	t.Run("过滤条件", func(t *testing.T) {
		orders, err := shop.OrderQuery.FindWithMemberDelivery(ctx, order.Search{MemberName: "B"}, nil)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, seed.OrderB, orders[0].ID)
	})
}

func TestFindWithItemsJoined(t *testing.T) {
	ctx := context.Background()
	shop := mysqltest.NewShop(t)
	seed := shop.SeedDefault(t)

	// 没有明细的订单也要出现在结果里
	emptyID := shop.Order(t, seed.UserA, []uint{seed.JPA1}, []int{1})
	shop.Exec(t, "DELETE FROM order_items WHERE order_id = ?", emptyID)

	ctx, counter := mysql.WithQueryCounter(ctx)
	orders, err := shop.OrderQuery.FindWithItemsJoined(ctx, order.Search{})
	require.NoError(t, err)
	assert.Equal(t, 1, counter.Count())

	require.Len(t, orders, 3, "JOIN膨胀的行按订单去重")
	assert.Equal(t, seed.OrderA, orders[0].ID)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, "JPA1 BOOK", orders[0].Items[0].Item.Name)
	assert.Equal(t, "JPA2 BOOK", orders[0].Items[1].Item.Name)
	assert.Equal(t, "진주", orders[1].Delivery.Address.City)
	assert.Equal(t, "SPRING2 BOOK", orders[1].Items[1].Item.Name)
	assert.Empty(t, orders[2].Items)
	assert.NotNil(t, orders[2].Items)
}

func TestFindOrderItemsByOrderIDs(t *testing.T) {
	ctx := context.Background()
	shop := mysqltest.NewShop(t)
	seed := shop.SeedDefault(t)

	items, err := shop.OrderQuery.FindOrderItemsByOrderIDs(ctx, []uint{seed.OrderB, seed.OrderA})
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, seed.OrderA, items[0].OrderID, "按明细ID升序")
	assert.Equal(t, seed.Spring2, items[3].ItemID)

	items, err = shop.OrderQuery.FindOrderItemsByOrderIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderViews(t *testing.T) {
	ctx := context.Background()
	shop := mysqltest.NewShop(t)
	seed := shop.SeedDefault(t)

	views, err := shop.OrderQuery.FindOrderViews(ctx, order.Search{Status: order.OrderStatusOrdered})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, seed.OrderA, views[0].OrderID)
	assert.Equal(t, "userA", views[0].MemberName)
	assert.Equal(t, order.OrderStatusOrdered, views[0].OrderStatus)
	assert.Equal(t, address.New("서울", "1", "1111"), views[0].Address)

	itemViews, err := shop.OrderQuery.FindOrderItemViews(ctx, []uint{seed.OrderA, seed.OrderB})
	require.NoError(t, err)
	require.Len(t, itemViews, 4)
	assert.Equal(t, order.OrderItemView{OrderID: seed.OrderA, ItemName: "JPA2 BOOK", OrderPrice: 20000, Count: 2}, itemViews[1])
	assert.Equal(t, order.OrderItemView{OrderID: seed.OrderB, ItemName: "SPRING1 BOOK", OrderPrice: 20000, Count: 3}, itemViews[2])

	flat, err := shop.OrderQuery.FindOrderFlatViews(ctx, order.Search{})
	require.NoError(t, err)
	require.Len(t, flat, 4, "每条明细一行")
	assert.Equal(t, seed.OrderA, flat[0].OrderID)
	assert.Equal(t, "JPA1 BOOK", flat[0].ItemName)
	assert.Equal(t, views[0], flat[0].OrderView, "嵌入的订单字段全部填充")
	assert.NotZero(t, flat[0].OrderItemID)
	assert.Equal(t, flat[0].OrderView, flat[1].OrderView, "同一订单的行重复订单字段")
	assert.Equal(t, "SPRING2 BOOK", flat[3].ItemName)
	assert.Equal(t, 4, flat[3].Count)
}

func TestIntegrityErrors(t *testing.T) {
	ctx := context.Background()

	type finder func(shop *mysqltest.Shop) error
	finders := map[string]finder{
		"FindWithMemberDelivery": func(shop *mysqltest.Shop) error {
			_, err := shop.OrderQuery.FindWithMemberDelivery(ctx, order.Search{}, nil)
			return err
		},
		"FindWithItemsJoined": func(shop *mysqltest.Shop) error {
			_, err := shop.OrderQuery.FindWithItemsJoined(ctx, order.Search{})
			return err
		},
		"FindOrderViews": func(shop *mysqltest.Shop) error {
			_, err := shop.OrderQuery.FindOrderViews(ctx, order.Search{})
			return err
		},
		"FindOrderFlatViews": func(shop *mysqltest.Shop) error {
			_, err := shop.OrderQuery.FindOrderFlatViews(ctx, order.Search{})
			return err
		},
	}

	t.Run("会员缺失", func(t *testing.T) {
		for name, find := range finders {
			t.Run(name, func(t *testing.T) {
				shop := mysqltest.NewShop(t)
				seed := shop.SeedDefault(t)
				shop.Exec(t, "DELETE FROM members WHERE id = ?", seed.UserB)

				err := find(shop)
				assert.ErrorIs(t, err, order.ErrMemberMissing)
				assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAggregateBroken))
			})
		}
	})

	t.Run("配送信息缺失", func(t *testing.T) {
		for name, find := range finders {
			t.Run(name, func(t *testing.T) {
				shop := mysqltest.NewShop(t)
				seed := shop.SeedDefault(t)
				o, err := shop.Orders.FindByID(ctx, seed.OrderA)
				require.NoError(t, err)
				shop.Exec(t, "DELETE FROM deliveries WHERE id = ?", o.DeliveryID)

				assert.ErrorIs(t, find(shop), order.ErrDeliveryMissing)
			})
		}
	})

	t.Run("商品缺失", func(t *testing.T) {
		shop := mysqltest.NewShop(t)
		seed := shop.SeedDefault(t)
		shop.Exec(t, "DELETE FROM items WHERE id = ?", seed.Spring2)

		_, err := shop.OrderQuery.FindWithItemsJoined(ctx, order.Search{})
		assert.ErrorIs(t, err, order.ErrItemMissing)

		_, err = shop.OrderQuery.FindOrderFlatViews(ctx, order.Search{})
		assert.ErrorIs(t, err, order.ErrItemMissing)

		_, err = shop.OrderQuery.FindOrderItemViews(ctx, []uint{seed.OrderB})
		assert.ErrorIs(t, err, order.ErrItemMissing)

		// to-one JOIN不涉及商品,不受影响
		_, err = shop.OrderQuery.FindWithMemberDelivery(ctx, order.Search{}, nil)
		assert.NoError(t, err)
	})

	t.Run("单表查询的配送信息", func(t *testing.T) {
		shop := mysqltest.NewShop(t)
		_, err := shop.OrderQuery.FindDelivery(ctx, 999)
		assert.ErrorIs(t, err, order.ErrDeliveryMissing)
	})
}
