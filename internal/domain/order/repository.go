package order

import (
	"context"
)

// Repository 订单仓储接口(写模型)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
// 3. 列表查询的各种加载策略放在读模型(orderquery)里,这里只保留写操作需要的方法
type Repository interface {
	// Create 保存订单(同一事务中保存配送信息、订单、订单明细)
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单
	// 返回的订单已加载Delivery、Items以及每个明细的Item(取消订单需要恢复库存)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// Update 更新订单状态
	Update(ctx context.Context, order *Order) error

	// FindAll 按条件查询订单(只加载订单本身,按ID升序)
	FindAll(ctx context.Context, search Search) ([]*Order, error)
}

// Transactor 事务执行器
// fn内通过ctx获取到的仓储操作都在同一事务中执行
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
