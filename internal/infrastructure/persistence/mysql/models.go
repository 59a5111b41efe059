package mysql

import (
	"time"
)

// AddressColumns 地址列(嵌入到members和deliveries表)
type AddressColumns struct {
	City    string `gorm:"size:100;comment:城市"`
	Street  string `gorm:"size:200;comment:街道"`
	Zipcode string `gorm:"size:20;comment:邮编"`
}

// MemberModel GORM会员模型
// 设计说明:
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/member/entity.go是领域实体，不依赖GORM
// 3. name唯一索引兜底重名检查的并发窗口
type MemberModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"uniqueIndex;size:50;not null;comment:会员名"`
	Address   AddressColumns `gorm:"embedded"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (MemberModel) TableName() string {
	return "members"
}

// ItemModel GORM商品模型
// 教学要点:
// 1. 单表继承:所有种类的商品存在同一张表,kind列区分种类
// 2. 种类特有的列(author、isbn)对其他种类为空
type ItemModel struct {
	ID            uint      `gorm:"primaryKey"`
	Kind          string    `gorm:"size:20;not null;index;comment:商品种类(BOOK)"`
	Name          string    `gorm:"size:200;not null;comment:商品名"`
	Price         int64     `gorm:"not null;comment:价格"`
	StockQuantity int       `gorm:"not null;default:0;comment:库存数量"`
	Author        string    `gorm:"size:100;comment:作者(BOOK)"`
	ISBN          string    `gorm:"column:isbn;size:20;comment:ISBN(BOOK)"`
	CreatedAt     time.Time `gorm:"comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ItemModel) TableName() string {
	return "items"
}

// DeliveryModel GORM配送模型
type DeliveryModel struct {
	ID      uint           `gorm:"primaryKey"`
	Address AddressColumns `gorm:"embedded"`
	Status  string         `gorm:"size:10;not null;comment:配送状态(READY/COMP)"`
}

// TableName 指定表名
func (DeliveryModel) TableName() string {
	return "deliveries"
}

// OrderModel GORM订单模型
// 教学要点:
// 1. Member、Delivery是belongs-to关联(外键在orders表),可以用Joins一次查出
// 2. Items是has-many关联,JOIN会让订单行重复,所以分页查询不JOIN它
// 3. 不声明数据库外键约束:读取时需要自己发现引用缺失的订单
type OrderModel struct {
	ID         uint             `gorm:"primaryKey"`
	MemberID   uint             `gorm:"index;not null;comment:会员ID"`
	Member     *MemberModel     `gorm:"foreignKey:MemberID"`
	DeliveryID uint             `gorm:"uniqueIndex;not null;comment:配送ID"`
	Delivery   *DeliveryModel   `gorm:"foreignKey:DeliveryID"`
	Items      []OrderItemModel `gorm:"foreignKey:OrderID"`
	OrderDate  time.Time        `gorm:"not null;comment:下单时间"`
	Status     string           `gorm:"size:10;not null;index;comment:订单状态(ORDERED/CANCELLED)"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 教学要点:OrderPrice记录下单时的价格快照
type OrderItemModel struct {
	ID         uint       `gorm:"primaryKey"`
	OrderID    uint       `gorm:"index;not null;comment:订单ID"`
	ItemID     uint       `gorm:"index;not null;comment:商品ID"`
	Item       *ItemModel `gorm:"foreignKey:ItemID"`
	OrderPrice int64      `gorm:"not null;comment:下单时单价"`
	Count      int        `gorm:"not null;comment:购买数量"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}
