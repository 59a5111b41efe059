package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/jpashop/internal/domain/order"
	apperrors "github.com/xiebiao/jpashop/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL,写模型)
// 教学要点:
// 1. 配送信息、订单、订单明细属于同一个聚合,必须在同一事务中保存
// 2. 关联对象显式保存,不依赖GORM的自动关联保存(避免顺带upsert会员、商品)
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 保存订单
// 顺序:deliveries → orders → order_items
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	if o.Delivery == nil {
		return order.ErrDeliveryMissing
	}

	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		delivery := toDeliveryModel(o.Delivery)
		if err := tx.Create(delivery).Error; err != nil {
			return apperrors.Wrap(err, "保存配送信息失败")
		}

		model := &OrderModel{
			MemberID:   o.MemberID,
			DeliveryID: delivery.ID,
			OrderDate:  o.OrderDate,
			Status:     string(o.Status),
		}
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return apperrors.Wrap(err, "保存订单失败")
		}

		items := make([]OrderItemModel, len(o.Items))
		for i, oi := range o.Items {
			items[i] = OrderItemModel{
				OrderID:    model.ID,
				ItemID:     oi.ItemID,
				OrderPrice: oi.OrderPrice,
				Count:      oi.Count,
			}
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return apperrors.Wrap(err, "保存订单明细失败")
			}
		}

		// 回填自增ID
		o.ID = model.ID
		o.DeliveryID = delivery.ID
		o.Delivery.ID = delivery.ID
		for i, oi := range o.Items {
			oi.ID = items[i].ID
			oi.OrderID = model.ID
		}
		return nil
	})
}

// FindByID 根据ID查找订单
// 加载配送信息(JOIN)和订单明细(Preload),明细的Item由调用方按需加载或加锁
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).
		Joins("Delivery").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("orders.id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	o := toOrderEntity(&model)
	if o.Delivery == nil {
		return nil, apperrors.Detail(order.ErrDeliveryMissing, "订单%d引用的配送信息%d不存在", o.ID, o.DeliveryID)
	}
	return o, nil
}

// Update 更新订单状态
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	result := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("id = ?", o.ID).
		Update("status", string(o.Status))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// FindAll 按条件查询订单(只查orders表)
func (r *orderRepository) FindAll(ctx context.Context, search order.Search) ([]*order.Order, error) {
	return findOrders(getDB(ctx, r.db), search)
}

// =========================================
// 辅助函数
// =========================================

// searchScope 订单查询条件
// 会员名用子查询过滤,不依赖查询里是否JOIN了members表
func searchScope(search order.Search) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search.MemberName != "" {
			db = db.Where("orders.member_id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).
					Model(&MemberModel{}).
					Select("id").
					Where("name LIKE ?", "%"+search.MemberName+"%"))
		}
		if search.Status != "" {
			db = db.Where("orders.status = ?", string(search.Status))
		}
		return db
	}
}

func findOrders(db *gorm.DB, search order.Search) ([]*order.Order, error) {
	var models []OrderModel
	if err := db.Scopes(searchScope(search)).Order("orders.id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, nil
}

// toOrderEntity GORM模型 → 领域实体
// 只转换已加载的关联;JOIN未命中的关联保持nil
func toOrderEntity(model *OrderModel) *order.Order {
	o := &order.Order{
		ID:         model.ID,
		MemberID:   model.MemberID,
		DeliveryID: model.DeliveryID,
		OrderDate:  model.OrderDate,
		Status:     order.OrderStatus(model.Status),
	}
	if model.Member != nil && model.Member.ID != 0 {
		o.Member = toMemberEntity(model.Member)
	}
	if model.Delivery != nil && model.Delivery.ID != 0 {
		o.Delivery = toDeliveryEntity(model.Delivery)
	}
	if model.Items != nil {
		o.Items = make([]*order.OrderItem, len(model.Items))
		for i := range model.Items {
			o.Items[i] = toOrderItemEntity(&model.Items[i])
		}
	}
	return o
}

func toOrderItemEntity(model *OrderItemModel) *order.OrderItem {
	oi := &order.OrderItem{
		ID:         model.ID,
		OrderID:    model.OrderID,
		ItemID:     model.ItemID,
		OrderPrice: model.OrderPrice,
		Count:      model.Count,
	}
	if model.Item != nil && model.Item.ID != 0 {
		oi.Item = toItemEntity(model.Item)
	}
	return oi
}

func toDeliveryModel(d *order.Delivery) *DeliveryModel {
	return &DeliveryModel{
		ID:      d.ID,
		Address: toAddressColumns(d.Address),
		Status:  string(d.Status),
	}
}

func toDeliveryEntity(model *DeliveryModel) *order.Delivery {
	return &order.Delivery{
		ID:      model.ID,
		Address: toAddress(model.Address),
		Status:  order.DeliveryStatus(model.Status),
	}
}
