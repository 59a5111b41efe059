package member

import (
	"context"
	"strings"

	"github.com/xiebiao/jpashop/internal/domain/address"
)

// Service 会员领域服务
type Service interface {
	// Join 会员注册
	// 业务规则:名称不能为空,不能与已有会员重名
	Join(ctx context.Context, name string, addr address.Address) (*Member, error)

	// FindMembers 查询全部会员
	FindMembers(ctx context.Context) ([]*Member, error)

	// FindOne 根据ID查询会员
	FindOne(ctx context.Context, id uint) (*Member, error)

	// Update 修改会员名称
	Update(ctx context.Context, id uint, name string) (*Member, error)
}

type service struct {
	repo Repository
}

// NewService 创建会员服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Join 会员注册
// 说明:应用层的重名检查存在并发窗口,members.name上的唯一索引兜底
func (s *service) Join(ctx context.Context, name string, addr address.Address) (*Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	if err := s.validateDuplicateMember(ctx, name); err != nil {
		return nil, err
	}

	m := NewMember(name, addr)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) validateDuplicateMember(ctx context.Context, name string) error {
	found, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if len(found) > 0 {
		return ErrDuplicateMember
	}
	return nil
}

// FindMembers 查询全部会员
func (s *service) FindMembers(ctx context.Context) ([]*Member, error) {
	return s.repo.FindAll(ctx)
}

// FindOne 根据ID查询会员
func (s *service) FindOne(ctx context.Context, id uint) (*Member, error) {
	return s.repo.FindByID(ctx, id)
}

// Update 修改会员名称
func (s *service) Update(ctx context.Context, id uint, name string) (*Member, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := m.Rename(strings.TrimSpace(name)); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
