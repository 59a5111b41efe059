package mysql

import (
	"context"
	"sync/atomic"

	"gorm.io/gorm"
)

type queryCounterKey struct{}

// QueryCounter 统计一个context内发出的SQL条数
// 只统计读语句(Query/Row回调),写语句不计
type QueryCounter struct {
	n atomic.Int64
}

// Count 已发出的SQL条数
func (c *QueryCounter) Count() int {
	return int(c.n.Load())
}

// WithQueryCounter 返回挂载了新计数器的context
// 仓储通过getDB(ctx)执行的查询都会计入该计数器
func WithQueryCounter(ctx context.Context) (context.Context, *QueryCounter) {
	c := &QueryCounter{}
	return context.WithValue(ctx, queryCounterKey{}, c), c
}

// RegisterQueryCounter 注册SQL计数回调
// Find/First走Query回调,Raw().Scan()/Count()走Row回调,两处都要注册
func RegisterQueryCounter(db *gorm.DB) error {
	if err := db.Callback().Query().After("gorm:query").
		Register("jpashop:count_query", countQuery); err != nil {
		return err
	}
	return db.Callback().Row().After("gorm:row").
		Register("jpashop:count_row", countQuery)
}

// countQuery 计数回调
// 子查询作为参数时GORM以DryRun方式执行Query回调来生成SQL,并没有发出语句,不计数
func countQuery(db *gorm.DB) {
	if db.DryRun || db.Statement == nil || db.Statement.Context == nil {
		return
	}
	if c, ok := db.Statement.Context.Value(queryCounterKey{}).(*QueryCounter); ok {
		c.n.Add(1)
	}
}
