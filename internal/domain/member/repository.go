package member

import (
	"context"
)

// Repository 会员仓储接口
// 接口定义在domain层,具体实现在infrastructure/persistence/mysql层
type Repository interface {
	// Create 保存会员,回填自增ID
	Create(ctx context.Context, member *Member) error

	// FindByID 根据ID查找会员
	// 如果不存在,返回ErrMemberNotFound
	FindByID(ctx context.Context, id uint) (*Member, error)

	// FindAll 查询全部会员(按ID升序)
	FindAll(ctx context.Context) ([]*Member, error)

	// FindByName 根据名称查找会员
	FindByName(ctx context.Context, name string) ([]*Member, error)

	// Update 更新会员信息
	Update(ctx context.Context, member *Member) error
}
