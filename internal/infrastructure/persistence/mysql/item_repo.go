package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/jpashop/internal/domain/item"
	apperrors "github.com/xiebiao/jpashop/pkg/errors"
)

// itemRepository 商品仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/item/repository.go定义的接口
// 2. 单表继承:kind列决定还原成哪种商品
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository 创建商品仓储
func NewItemRepository(db *gorm.DB) item.Repository {
	return &itemRepository{db: db}
}

// Create 保存商品
func (r *itemRepository) Create(ctx context.Context, it *item.Item) error {
	model := toItemModel(it)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "保存商品失败")
	}

	it.ID = model.ID
	it.CreatedAt = model.CreatedAt
	it.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找商品
func (r *itemRepository) FindByID(ctx context.Context, id uint) (*item.Item, error) {
	var model ItemModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, item.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}
	return toItemEntity(&model), nil
}

// FindAll 查询全部商品
func (r *itemRepository) FindAll(ctx context.Context) ([]*item.Item, error) {
	var models []ItemModel
	if err := getDB(ctx, r.db).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询商品列表失败")
	}
	return toItemEntities(models), nil
}

// FindByIDs 根据一组ID查询商品
// SELECT * FROM items WHERE id IN (?) ORDER BY id
func (r *itemRepository) FindByIDs(ctx context.Context, ids []uint) ([]*item.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []ItemModel
	if err := getDB(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "批量查询商品失败")
	}
	return toItemEntities(models), nil
}

// Update 更新商品(包括库存)
// 教学要点:必须使用getDB(ctx)参与下单/取消的事务
func (r *itemRepository) Update(ctx context.Context, it *item.Item) error {
	model := toItemModel(it)

	result := getDB(ctx, r.db).Model(&ItemModel{}).Where("id = ?", it.ID).Updates(map[string]interface{}{
		"name":           model.Name,
		"price":          model.Price,
		"stock_quantity": model.StockQuantity,
		"author":         model.Author,
		"isbn":           model.ISBN,
		"updated_at":     it.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新商品失败")
	}
	if result.RowsAffected == 0 {
		return item.ErrItemNotFound
	}
	return nil
}

// LockByID 悲观锁查询商品(用于下单和取消订单)
// 教学要点:
// 1. SELECT ... FOR UPDATE锁定商品行,其他事务必须等待当前事务结束
// 2. 必须使用getDB(ctx)从context获取事务DB,否则锁在语句结束时就释放了
func (r *itemRepository) LockByID(ctx context.Context, id uint) (*item.Item, error) {
	var model ItemModel
	err := getDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, item.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "锁定商品失败")
	}
	return toItemEntity(&model), nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toItemModel(it *item.Item) *ItemModel {
	model := &ItemModel{
		ID:            it.ID,
		Kind:          string(it.Kind),
		Name:          it.Name,
		Price:         it.Price,
		StockQuantity: it.StockQuantity,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
	if it.Book != nil {
		model.Author = it.Book.Author
		model.ISBN = it.Book.ISBN
	}
	return model
}

func toItemEntity(model *ItemModel) *item.Item {
	it := &item.Item{
		ID:            model.ID,
		Kind:          item.Kind(model.Kind),
		Name:          model.Name,
		Price:         model.Price,
		StockQuantity: model.StockQuantity,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
	if it.Kind == item.KindBook {
		it.Book = &item.BookDetail{Author: model.Author, ISBN: model.ISBN}
	}
	return it
}

func toItemEntities(models []ItemModel) []*item.Item {
	items := make([]*item.Item, len(models))
	for i := range models {
		items[i] = toItemEntity(&models[i])
	}
	return items
}
