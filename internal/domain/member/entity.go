package member

import (
	"time"

	"github.com/xiebiao/jpashop/internal/domain/address"
)

// Member 会员实体(聚合根)
// 设计说明:
// 1. 会员与订单是一对多关系,外键保存在订单一侧(orders.member_id)
// 2. 实体中不持有订单列表,避免序列化时会员↔订单来回引用
// 3. 领域实体不依赖GORM tag(infrastructure层负责映射)
type Member struct {
	ID        uint
	Name      string
	Address   address.Address
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMember 创建新会员(工厂方法)
func NewMember(name string, addr address.Address) *Member {
	now := time.Now()
	return &Member{
		Name:      name,
		Address:   addr,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Rename 修改会员名称(领域行为)
func (m *Member) Rename(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	m.Name = name
	m.UpdatedAt = time.Now()
	return nil
}
