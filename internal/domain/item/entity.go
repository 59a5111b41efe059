package item

import (
	"time"
)

// Kind 商品种类(单表继承的鉴别值)
type Kind string

const (
	KindBook Kind = "BOOK" // 图书
)

// Item 商品实体(聚合根)
// 设计说明:
// 1. 商品种类用带标签的变体表达:Kind标识种类,对应种类的明细字段非空
// 2. 目前只有图书一种,Book字段保存作者与ISBN
// 3. 价格使用int64存储(整数金额,避免浮点精度问题)
type Item struct {
	ID            uint
	Kind          Kind
	Name          string
	Price         int64
	StockQuantity int
	Book          *BookDetail // Kind == KindBook 时非空
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookDetail 图书特有字段
type BookDetail struct {
	Author string
	ISBN   string
}

// NewBook 创建图书商品(工厂方法)
func NewBook(name string, price int64, stock int, author, isbn string) *Item {
	now := time.Now()
	return &Item{
		Kind:          KindBook,
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		Book:          &BookDetail{Author: author, ISBN: isbn},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate 校验商品字段
func (i *Item) Validate() error {
	switch i.Kind {
	case KindBook:
		if i.Book == nil {
			return ErrUnknownKind
		}
	default:
		return ErrUnknownKind
	}
	if i.Name == "" {
		return ErrInvalidName
	}
	if i.Price < 0 {
		return ErrInvalidPrice
	}
	if i.StockQuantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

// AddStock 增加库存(用于订单取消、补货)
func (i *Item) AddStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	i.StockQuantity += quantity
	i.UpdatedAt = time.Now()
	return nil
}

// RemoveStock 扣减库存(用于下单)
// 业务规则:扣减后库存不能为负数
func (i *Item) RemoveStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.StockQuantity-quantity < 0 {
		return ErrInsufficientStock
	}
	i.StockQuantity -= quantity
	i.UpdatedAt = time.Now()
	return nil
}
