package item

import (
	"context"
	"time"
)

// Service 商品领域服务接口
type Service interface {
	// SaveItem 上架商品
	SaveItem(ctx context.Context, item *Item) error

	// FindItems 查询全部商品
	FindItems(ctx context.Context) ([]*Item, error)

	// FindOne 根据ID查询商品
	FindOne(ctx context.Context, id uint) (*Item, error)

	// UpdateItem 修改商品信息
	// 只修改传入的字段,种类不可变更
	UpdateItem(ctx context.Context, id uint, params UpdateParams) (*Item, error)
}

// UpdateParams 商品修改参数
type UpdateParams struct {
	Name          string
	Price         int64
	StockQuantity int
	Author        string
	ISBN          string
}

type service struct {
	repo Repository
}

// NewService 创建商品领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// SaveItem 上架商品
func (s *service) SaveItem(ctx context.Context, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, item)
}

// FindItems 查询全部商品
func (s *service) FindItems(ctx context.Context) ([]*Item, error) {
	return s.repo.FindAll(ctx)
}

// FindOne 根据ID查询商品
func (s *service) FindOne(ctx context.Context, id uint) (*Item, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateItem 修改商品信息
// 先查询再修改(而不是用请求数据构造新实体覆盖),种类和创建时间保持原值
func (s *service) UpdateItem(ctx context.Context, id uint, params UpdateParams) (*Item, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 在副本上修改,校验失败时不污染已加载的实体
	updated := *found
	updated.Name = params.Name
	updated.Price = params.Price
	updated.StockQuantity = params.StockQuantity
	if updated.Kind == KindBook {
		updated.Book = &BookDetail{Author: params.Author, ISBN: params.ISBN}
	}
	updated.UpdatedAt = time.Now()

	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
