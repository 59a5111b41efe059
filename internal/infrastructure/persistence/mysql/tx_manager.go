package mysql

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
// 教学要点:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. context中已有事务时复用外层事务
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行读写事务
// fn返回error时自动ROLLBACK,返回nil时自动COMMIT
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    it, err := itemRepo.LockByID(ctx, itemID) // SELECT ... FOR UPDATE
//	    if err != nil {
//	        return err
//	    }
//	    if err := it.RemoveStock(count); err != nil {
//	        return err // 自动回滚
//	    }
//	    return itemRepo.Update(ctx, it)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// ReadOnly 执行只读事务
// 订单读取的所有查询(包括懒加载的关联)都在同一个只读事务内完成,
// 事务结束后不再访问数据库
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn, &sql.TxOptions{ReadOnly: true})
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	// 已在事务中时直接复用,避免只读事务里再开嵌套事务
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Repository的getDB会从context提取事务DB
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	}, opts...)
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:
// 1. 事务传递机制:同一个context里的仓储调用共享事务
// 2. 重新绑定ctx,SQL计数器、超时取消等都跟随调用方的context
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
