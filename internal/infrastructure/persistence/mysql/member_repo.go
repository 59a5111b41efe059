package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/jpashop/internal/domain/address"
	"github.com/xiebiao/jpashop/internal/domain/member"
	apperrors "github.com/xiebiao/jpashop/pkg/errors"
)

// memberRepository 会员仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/member/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如重名),转换为业务错误
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建会员仓储
// 注意:返回的是domain层的接口类型,不是具体类型(依赖倒置)
func NewMemberRepository(db *gorm.DB) member.Repository {
	return &memberRepository{db: db}
}

// Create 保存会员
// 应用层已做重名检查,唯一索引冲突说明有并发注册
func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	model := toMemberModel(m)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return member.ErrDuplicateMember
		}
		return apperrors.Wrap(err, "保存会员失败")
	}

	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	m.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找会员
func (r *memberRepository) FindByID(ctx context.Context, id uint) (*member.Member, error) {
	var model MemberModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound
		}
		return nil, apperrors.Wrap(err, "查询会员失败")
	}
	return toMemberEntity(&model), nil
}

// FindAll 查询全部会员
func (r *memberRepository) FindAll(ctx context.Context) ([]*member.Member, error) {
	var models []MemberModel
	if err := getDB(ctx, r.db).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询会员列表失败")
	}

	members := make([]*member.Member, len(models))
	for i := range models {
		members[i] = toMemberEntity(&models[i])
	}
	return members, nil
}

// FindByName 按名称精确查找会员
func (r *memberRepository) FindByName(ctx context.Context, name string) ([]*member.Member, error) {
	var models []MemberModel
	if err := getDB(ctx, r.db).Where("name = ?", name).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询会员失败")
	}

	members := make([]*member.Member, len(models))
	for i := range models {
		members[i] = toMemberEntity(&models[i])
	}
	return members, nil
}

// Update 更新会员
func (r *memberRepository) Update(ctx context.Context, m *member.Member) error {
	result := getDB(ctx, r.db).Model(&MemberModel{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
		"name":       m.Name,
		"city":       m.Address.City,
		"street":     m.Address.Street,
		"zipcode":    m.Address.Zipcode,
		"updated_at": m.UpdatedAt,
	})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return member.ErrDuplicateMember
		}
		return apperrors.Wrap(result.Error, "更新会员失败")
	}
	if result.RowsAffected == 0 {
		return member.ErrMemberNotFound
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toAddressColumns(a address.Address) AddressColumns {
	return AddressColumns{City: a.City, Street: a.Street, Zipcode: a.Zipcode}
}

func toAddress(c AddressColumns) address.Address {
	return address.New(c.City, c.Street, c.Zipcode)
}

func toMemberModel(m *member.Member) *MemberModel {
	return &MemberModel{
		ID:        m.ID,
		Name:      m.Name,
		Address:   toAddressColumns(m.Address),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toMemberEntity(model *MemberModel) *member.Member {
	return &member.Member{
		ID:        model.ID,
		Name:      model.Name,
		Address:   toAddress(model.Address),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
