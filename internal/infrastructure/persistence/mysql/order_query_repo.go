package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/jpashop/internal/domain/address"
	"github.com/xiebiao/jpashop/internal/domain/order"
	apperrors "github.com/xiebiao/jpashop/pkg/errors"
)

// orderQueryRepository 订单读模型仓储
// 教学要点:
// 1. 所有查询只读,通过getDB(ctx)参与调用方开启的只读事务
// 2. JOIN一律使用LEFT JOIN:INNER JOIN会把引用缺失的订单悄悄过滤掉,
//    LEFT JOIN保留该行,由这里检查NULL并返回完整性错误
type orderQueryRepository struct {
	db *gorm.DB
}

// NewOrderQueryRepository 创建订单读模型仓储
func NewOrderQueryRepository(db *gorm.DB) order.QueryRepository {
	return &orderQueryRepository{db: db}
}

// FindOrders 只查询订单表
func (r *orderQueryRepository) FindOrders(ctx context.Context, search order.Search) ([]*order.Order, error) {
	return findOrders(getDB(ctx, r.db), search)
}

// FindDelivery 查询单个配送信息
func (r *orderQueryRepository) FindDelivery(ctx context.Context, id uint) (*order.Delivery, error) {
	var model DeliveryModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrDeliveryMissing
		}
		return nil, apperrors.Wrap(err, "查询配送信息失败")
	}
	return toDeliveryEntity(&model), nil
}

// FindOrderItems 查询单个订单的明细
func (r *orderQueryRepository) FindOrderItems(ctx context.Context, orderID uint) ([]*order.OrderItem, error) {
	return r.findOrderItems(ctx, "order_id = ?", orderID)
}

// FindOrderItemsByOrderIDs 一条IN查询加载多个订单的明细
// SELECT * FROM order_items WHERE order_id IN (?, ?, ...) ORDER BY id
func (r *orderQueryRepository) FindOrderItemsByOrderIDs(ctx context.Context, orderIDs []uint) ([]*order.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	return r.findOrderItems(ctx, "order_id IN ?", orderIDs)
}

func (r *orderQueryRepository) findOrderItems(ctx context.Context, cond string, arg interface{}) ([]*order.OrderItem, error) {
	var models []OrderItemModel
	if err := getDB(ctx, r.db).Where(cond, arg).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询订单明细失败")
	}

	items := make([]*order.OrderItem, len(models))
	for i := range models {
		items[i] = toOrderItemEntity(&models[i])
	}
	return items, nil
}

// FindWithMemberDelivery 一条SQL JOIN会员和配送信息
// 教学要点:
// 1. Member、Delivery都是to-one关联,JOIN之后每个订单仍然只有一行
// 2. 因为行数不膨胀,OFFSET/LIMIT分页是准确的
//
//	SELECT orders.*, Member.*, Delivery.* FROM orders
//	LEFT JOIN members Member ON orders.member_id = Member.id
//	LEFT JOIN deliveries Delivery ON orders.delivery_id = Delivery.id
//	ORDER BY orders.id LIMIT ? OFFSET ?
func (r *orderQueryRepository) FindWithMemberDelivery(ctx context.Context, search order.Search, page *order.Page) ([]*order.Order, error) {
	query := getDB(ctx, r.db).
		Joins("Member").
		Joins("Delivery").
		Scopes(searchScope(search)).
		Order("orders.id")
	if page != nil {
		query = query.Offset(page.Offset).Limit(page.Limit)
	}

	var models []OrderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		o := toOrderEntity(&models[i])
		if err := checkToOne(o); err != nil {
			return nil, err
		}
		orders[i] = o
	}
	return orders, nil
}

// joinedRow 全JOIN查询的一行
// 指针字段对应LEFT JOIN可能为NULL的主键
type joinedRow struct {
	OrderID    uint      `gorm:"column:order_id"`
	MemberID   uint      `gorm:"column:member_id"`
	DeliveryID uint      `gorm:"column:delivery_id"`
	OrderDate  time.Time `gorm:"column:order_date"`
	Status     string    `gorm:"column:status"`

	MID        *uint     `gorm:"column:m_id"`
	MName      string    `gorm:"column:m_name"`
	MCity      string    `gorm:"column:m_city"`
	MStreet    string    `gorm:"column:m_street"`
	MZipcode   string    `gorm:"column:m_zipcode"`
	MCreatedAt time.Time `gorm:"column:m_created_at"`
	MUpdatedAt time.Time `gorm:"column:m_updated_at"`

	DID      *uint  `gorm:"column:d_id"`
	DCity    string `gorm:"column:d_city"`
	DStreet  string `gorm:"column:d_street"`
	DZipcode string `gorm:"column:d_zipcode"`
	DStatus  string `gorm:"column:d_status"`

	OIID       *uint `gorm:"column:oi_id"`
	ItemID     uint  `gorm:"column:item_id"`
	OrderPrice int64 `gorm:"column:order_price"`
	Count      int   `gorm:"column:count"`

	IID            *uint     `gorm:"column:i_id"`
	IKind          string    `gorm:"column:i_kind"`
	IName          string    `gorm:"column:i_name"`
	IPrice         int64     `gorm:"column:i_price"`
	IStockQuantity int       `gorm:"column:i_stock_quantity"`
	IAuthor        string    `gorm:"column:i_author"`
	IISBN          string    `gorm:"column:i_isbn"`
	ICreatedAt     time.Time `gorm:"column:i_created_at"`
	IUpdatedAt     time.Time `gorm:"column:i_updated_at"`
}

const joinedColumns = `orders.id AS order_id, orders.member_id, orders.delivery_id, orders.order_date, orders.status,
m.id AS m_id, m.name AS m_name, m.city AS m_city, m.street AS m_street, m.zipcode AS m_zipcode,
m.created_at AS m_created_at, m.updated_at AS m_updated_at,
d.id AS d_id, d.city AS d_city, d.street AS d_street, d.zipcode AS d_zipcode, d.status AS d_status,
oi.id AS oi_id, oi.item_id, oi.order_price, oi.count,
i.id AS i_id, i.kind AS i_kind, i.name AS i_name, i.price AS i_price, i.stock_quantity AS i_stock_quantity,
i.author AS i_author, i.isbn AS i_isbn, i.created_at AS i_created_at, i.updated_at AS i_updated_at`

// FindWithItemsJoined 一条SQL JOIN全部关联,内存中按订单去重
// 教学要点:
// 1. JOIN一对多的order_items后,一个订单有几条明细就重复几行
// 2. 按订单ID去重,每行追加一条明细
// 3. 行数膨胀后OFFSET/LIMIT切的是行不是订单,所以这种方式不能分页
func (r *orderQueryRepository) FindWithItemsJoined(ctx context.Context, search order.Search) ([]*order.Order, error) {
	var rows []joinedRow
	err := getDB(ctx, r.db).
		Table("orders").
		Select(joinedColumns).
		Joins("LEFT JOIN members m ON m.id = orders.member_id").
		Joins("LEFT JOIN deliveries d ON d.id = orders.delivery_id").
		Joins("LEFT JOIN order_items oi ON oi.order_id = orders.id").
		Joins("LEFT JOIN items i ON i.id = oi.item_id").
		Scopes(searchScope(search)).
		Order("orders.id").
		Order("oi.id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询订单列表失败")
	}

	var orders []*order.Order
	byID := make(map[uint]*order.Order)
	for _, row := range rows {
		o, seen := byID[row.OrderID]
		if !seen {
			o = row.toOrder()
			if err := checkToOne(o); err != nil {
				return nil, err
			}
			o.Items = []*order.OrderItem{}
			byID[row.OrderID] = o
			orders = append(orders, o)
		}

		// 没有明细的订单:order_items部分整行为NULL
		if row.OIID == nil {
			continue
		}
		if row.IID == nil {
			return nil, itemMissing(row.OrderID, row.ItemID)
		}
		o.Items = append(o.Items, row.toOrderItem())
	}
	return orders, nil
}

func (row *joinedRow) toOrder() *order.Order {
	o := &order.Order{
		ID:         row.OrderID,
		MemberID:   row.MemberID,
		DeliveryID: row.DeliveryID,
		OrderDate:  row.OrderDate,
		Status:     order.OrderStatus(row.Status),
	}
	if row.MID != nil {
		o.Member = toMemberEntity(&MemberModel{
			ID:        *row.MID,
			Name:      row.MName,
			Address:   AddressColumns{City: row.MCity, Street: row.MStreet, Zipcode: row.MZipcode},
			CreatedAt: row.MCreatedAt,
			UpdatedAt: row.MUpdatedAt,
		})
	}
	if row.DID != nil {
		o.Delivery = toDeliveryEntity(&DeliveryModel{
			ID:      *row.DID,
			Address: AddressColumns{City: row.DCity, Street: row.DStreet, Zipcode: row.DZipcode},
			Status:  row.DStatus,
		})
	}
	return o
}

func (row *joinedRow) toOrderItem() *order.OrderItem {
	return toOrderItemEntity(&OrderItemModel{
		ID:         *row.OIID,
		OrderID:    row.OrderID,
		ItemID:     row.ItemID,
		OrderPrice: row.OrderPrice,
		Count:      row.Count,
		Item: &ItemModel{
			ID:            *row.IID,
			Kind:          row.IKind,
			Name:          row.IName,
			Price:         row.IPrice,
			StockQuantity: row.IStockQuantity,
			Author:        row.IAuthor,
			ISBN:          row.IISBN,
			CreatedAt:     row.ICreatedAt,
			UpdatedAt:     row.IUpdatedAt,
		},
	})
}

// OrderViewRow 订单列表字段
// 必须导出:flatRow匿名嵌入它,GORM解析Scan目标时会跳过未导出的字段(包括匿名嵌入)
type OrderViewRow struct {
	OrderID     uint      `gorm:"column:order_id"`
	MemberID    uint      `gorm:"column:member_id"`
	DeliveryID  uint      `gorm:"column:delivery_id"`
	MID         *uint     `gorm:"column:m_id"`
	DID         *uint     `gorm:"column:d_id"`
	MemberName  string    `gorm:"column:member_name"`
	OrderDate   time.Time `gorm:"column:order_date"`
	OrderStatus string    `gorm:"column:order_status"`
	City        string    `gorm:"column:city"`
	Street      string    `gorm:"column:street"`
	Zipcode     string    `gorm:"column:zipcode"`
}

const viewColumns = `orders.id AS order_id, orders.member_id, orders.delivery_id, m.id AS m_id, d.id AS d_id,
m.name AS member_name, orders.order_date, orders.status AS order_status,
d.city, d.street, d.zipcode`

func (row *OrderViewRow) check() error {
	if row.MID == nil {
		return memberMissing(row.OrderID, row.MemberID)
	}
	if row.DID == nil {
		return deliveryMissing(row.OrderID, row.DeliveryID)
	}
	return nil
}

func (row *OrderViewRow) toView() order.OrderView {
	return order.OrderView{
		OrderID:     row.OrderID,
		MemberName:  row.MemberName,
		OrderDate:   row.OrderDate,
		OrderStatus: order.OrderStatus(row.OrderStatus),
		Address:     address.New(row.City, row.Street, row.Zipcode),
	}
}

// FindOrderViews 直接查询订单列表字段
// 只SELECT需要的列,不还原实体
func (r *orderQueryRepository) FindOrderViews(ctx context.Context, search order.Search) ([]order.OrderView, error) {
	var rows []OrderViewRow
	err := getDB(ctx, r.db).
		Table("orders").
		Select(viewColumns).
		Joins("LEFT JOIN members m ON m.id = orders.member_id").
		Joins("LEFT JOIN deliveries d ON d.id = orders.delivery_id").
		Scopes(searchScope(search)).
		Order("orders.id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询订单列表失败")
	}

	views := make([]order.OrderView, len(rows))
	for i := range rows {
		if err := rows[i].check(); err != nil {
			return nil, err
		}
		views[i] = rows[i].toView()
	}
	return views, nil
}

type itemViewRow struct {
	OrderID    uint   `gorm:"column:order_id"`
	ItemID     uint   `gorm:"column:item_id"`
	IID        *uint  `gorm:"column:i_id"`
	ItemName   string `gorm:"column:item_name"`
	OrderPrice int64  `gorm:"column:order_price"`
	Count      int    `gorm:"column:count"`
}

// FindOrderItemViews 一条IN查询取多个订单的明细字段
//
//	SELECT oi.order_id, i.name AS item_name, oi.order_price, oi.count
//	FROM order_items oi LEFT JOIN items i ON i.id = oi.item_id
//	WHERE oi.order_id IN (?) ORDER BY oi.id
func (r *orderQueryRepository) FindOrderItemViews(ctx context.Context, orderIDs []uint) ([]order.OrderItemView, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	var rows []itemViewRow
	err := getDB(ctx, r.db).
		Table("order_items oi").
		Select("oi.order_id, oi.item_id, i.id AS i_id, i.name AS item_name, oi.order_price, oi.count").
		Joins("LEFT JOIN items i ON i.id = oi.item_id").
		Where("oi.order_id IN ?", orderIDs).
		Order("oi.id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询订单明细失败")
	}

	views := make([]order.OrderItemView, len(rows))
	for i, row := range rows {
		if row.IID == nil {
			return nil, itemMissing(row.OrderID, row.ItemID)
		}
		views[i] = order.OrderItemView{
			OrderID:    row.OrderID,
			ItemName:   row.ItemName,
			OrderPrice: row.OrderPrice,
			Count:      row.Count,
		}
	}
	return views, nil
}

type flatRow struct {
	OrderViewRow
	OIID       *uint  `gorm:"column:oi_id"`
	ItemID     uint   `gorm:"column:item_id"`
	IID        *uint  `gorm:"column:i_id"`
	ItemName   string `gorm:"column:item_name"`
	OrderPrice int64  `gorm:"column:order_price"`
	Count      int    `gorm:"column:count"`
}

// FindOrderFlatViews 一条SQL JOIN全部表,每条明细一行
// 没有明细的订单仍返回一行,明细字段为空
func (r *orderQueryRepository) FindOrderFlatViews(ctx context.Context, search order.Search) ([]order.OrderFlatView, error) {
	var rows []flatRow
	err := getDB(ctx, r.db).
		Table("orders").
		Select(viewColumns+`, oi.id AS oi_id, oi.item_id, i.id AS i_id, i.name AS item_name, oi.order_price, oi.count`).
		Joins("LEFT JOIN members m ON m.id = orders.member_id").
		Joins("LEFT JOIN deliveries d ON d.id = orders.delivery_id").
		Joins("LEFT JOIN order_items oi ON oi.order_id = orders.id").
		Joins("LEFT JOIN items i ON i.id = oi.item_id").
		Scopes(searchScope(search)).
		Order("orders.id").
		Order("oi.id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询订单列表失败")
	}

	views := make([]order.OrderFlatView, len(rows))
	for i := range rows {
		row := &rows[i]
		if err := row.check(); err != nil {
			return nil, err
		}
		if row.OIID != nil && row.IID == nil {
			return nil, itemMissing(row.OrderID, row.ItemID)
		}
		views[i] = order.OrderFlatView{
			OrderView:  row.toView(),
			ItemName:   row.ItemName,
			OrderPrice: row.OrderPrice,
			Count:      row.Count,
		}
		if row.OIID != nil {
			views[i].OrderItemID = *row.OIID
		}
	}
	return views, nil
}

// =========================================
// 完整性检查
// =========================================

func checkToOne(o *order.Order) error {
	if o.Member == nil {
		return memberMissing(o.ID, o.MemberID)
	}
	if o.Delivery == nil {
		return deliveryMissing(o.ID, o.DeliveryID)
	}
	return nil
}

func memberMissing(orderID, memberID uint) error {
	return apperrors.Detail(order.ErrMemberMissing, "订单%d引用的会员%d不存在", orderID, memberID)
}

func deliveryMissing(orderID, deliveryID uint) error {
	return apperrors.Detail(order.ErrDeliveryMissing, "订单%d引用的配送信息%d不存在", orderID, deliveryID)
}

func itemMissing(orderID, itemID uint) error {
	return apperrors.Detail(order.ErrItemMissing, "订单%d的明细引用的商品%d不存在", orderID, itemID)
}
