package item

import (
	"context"
)

// Repository 商品仓储接口(依赖倒置原则)
type Repository interface {
	// Create 保存商品
	Create(ctx context.Context, item *Item) error

	// FindByID 根据ID查找商品
	FindByID(ctx context.Context, id uint) (*Item, error)

	// FindAll 查询全部商品(按ID升序)
	FindAll(ctx context.Context) ([]*Item, error)

	// FindByIDs 根据一组ID查询商品(一条IN查询,按ID升序)
	// 不存在的ID直接忽略,由调用方判断是否缺失
	FindByIDs(ctx context.Context, ids []uint) ([]*Item, error)

	// Update 更新商品(包括库存)
	Update(ctx context.Context, item *Item) error

	// LockByID 悲观锁查询商品(下单/取消时锁定库存行)
	// 使用SELECT FOR UPDATE,必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Item, error)
}
