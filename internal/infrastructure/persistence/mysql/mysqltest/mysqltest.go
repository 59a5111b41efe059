// Package mysqltest 仓储测试辅助工具
// 使用内存SQLite代替MySQL,每个测试独立一个数据库
package mysqltest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/jpashop/internal/domain/address"
	"github.com/xiebiao/jpashop/internal/domain/item"
	"github.com/xiebiao/jpashop/internal/domain/member"
	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/internal/infrastructure/persistence/mysql"
)

// NewDB 创建独立的内存数据库并迁移表结构
// 教学说明:
// 1. 库名使用uuid,同一进程内的测试互不干扰
// 2. cache=shared + 单连接:连接池里的所有语句看到同一个内存库
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := mysql.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err, "打开SQLite失败")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.AutoMigrate(db), "迁移表结构失败")
	return db
}

// Shop 组装好的仓储和领域服务
type Shop struct {
	DB        *gorm.DB
	TxManager *mysql.TxManager

	Members    member.Repository
	Items      item.Repository
	Orders     order.Repository
	OrderQuery order.QueryRepository
	MemberSvc  member.Service
	ItemSvc    item.Service
	OrderSvc   order.Service
}

// NewShop 基于新的内存数据库组装仓储和服务
func NewShop(t *testing.T) *Shop {
	t.Helper()
	db := NewDB(t)

	s := &Shop{
		DB:         db,
		TxManager:  mysql.NewTxManager(db),
		Members:    mysql.NewMemberRepository(db),
		Items:      mysql.NewItemRepository(db),
		Orders:     mysql.NewOrderRepository(db),
		OrderQuery: mysql.NewOrderQueryRepository(db),
	}
	s.MemberSvc = member.NewService(s.Members)
	s.ItemSvc = item.NewService(s.Items)
	s.OrderSvc = order.NewService(s.Orders, s.Members, s.Items, s.TxManager)
	return s
}

// Seed 初始数据的ID
type Seed struct {
	UserA, UserB     uint
	JPA1, JPA2       uint
	Spring1, Spring2 uint
	OrderA, OrderB   uint
}

// SeedDefault 写入两位会员各一个两条明细的订单
//
//	userA(서울): JPA1 BOOK 10000×1, JPA2 BOOK 20000×2
//	userB(진주): SPRING1 BOOK 20000×3, SPRING2 BOOK 40000×4
func (s *Shop) SeedDefault(t *testing.T) Seed {
	t.Helper()
	var seed Seed

	seed.UserA = s.Join(t, "userA", address.New("서울", "1", "1111"))
	seed.JPA1 = s.Book(t, "JPA1 BOOK", 10000, 100)
	seed.JPA2 = s.Book(t, "JPA2 BOOK", 20000, 100)
	seed.OrderA = s.Order(t, seed.UserA, []uint{seed.JPA1, seed.JPA2}, []int{1, 2})

	seed.UserB = s.Join(t, "userB", address.New("진주", "2", "2222"))
	seed.Spring1 = s.Book(t, "SPRING1 BOOK", 20000, 200)
	seed.Spring2 = s.Book(t, "SPRING2 BOOK", 40000, 300)
	seed.OrderB = s.Order(t, seed.UserB, []uint{seed.Spring1, seed.Spring2}, []int{3, 4})

	return seed
}

// Join 注册会员
func (s *Shop) Join(t *testing.T, name string, addr address.Address) uint {
	t.Helper()
	m, err := s.MemberSvc.Join(context.Background(), name, addr)
	require.NoError(t, err)
	return m.ID
}

// Book 上架图书
func (s *Shop) Book(t *testing.T, name string, price int64, stock int) uint {
	t.Helper()
	b := item.NewBook(name, price, stock, "author", "isbn-"+name)
	require.NoError(t, s.ItemSvc.SaveItem(context.Background(), b))
	return b.ID
}

// Order 下一个多明细订单
// 领域服务一次只下单一个商品,这里直接用工厂方法组装聚合
func (s *Shop) Order(t *testing.T, memberID uint, itemIDs []uint, counts []int) uint {
	t.Helper()
	require.Len(t, counts, len(itemIDs))

	var orderID uint
	err := s.TxManager.Transaction(context.Background(), func(ctx context.Context) error {
		m, err := s.Members.FindByID(ctx, memberID)
		if err != nil {
			return err
		}

		lines := make([]*order.OrderItem, len(itemIDs))
		for i, id := range itemIDs {
			it, err := s.Items.LockByID(ctx, id)
			if err != nil {
				return err
			}
			if lines[i], err = order.CreateOrderItem(it, it.Price, counts[i]); err != nil {
				return err
			}
			if err := s.Items.Update(ctx, it); err != nil {
				return err
			}
		}

		o, err := order.CreateOrder(m, order.NewDelivery(m.Address), lines...)
		if err != nil {
			return err
		}
		if err := s.Orders.Create(ctx, o); err != nil {
			return err
		}
		orderID = o.ID
		return nil
	})
	require.NoError(t, err)
	return orderID
}

// Exec 直接执行SQL(用于制造数据不一致的场景)
func (s *Shop) Exec(t *testing.T, sql string, args ...interface{}) {
	t.Helper()
	require.NoError(t, s.DB.Exec(sql, args...).Error)
}
