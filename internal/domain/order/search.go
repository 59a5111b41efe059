package order

import (
	"unicode/utf8"

	apperrors "github.com/xiebiao/jpashop/pkg/errors"
)

// MaxMemberNameLength 会员名过滤条件的最大长度
const MaxMemberNameLength = 50

// Search 订单查询条件
// 两个字段都可以为空,为空表示不过滤
type Search struct {
	MemberName string      // 会员名(模糊匹配)
	Status     OrderStatus // 订单状态(精确匹配)
}

// Validate 校验查询条件
// 必须在构造SQL之前调用,非法条件不发出任何查询
func (s Search) Validate() error {
	if s.Status != "" && !s.Status.IsValid() {
		return apperrors.Detail(ErrInvalidSearch, "订单状态只能是ORDERED或CANCELLED: %q", s.Status)
	}
	if utf8.RuneCountInString(s.MemberName) > MaxMemberNameLength {
		return apperrors.Detail(ErrInvalidSearch, "会员名长度不能超过%d", MaxMemberNameLength)
	}
	return nil
}

// IsEmpty 是否为空条件(查询全部订单)
func (s Search) IsEmpty() bool {
	return s.MemberName == "" && s.Status == ""
}

// Page 分页参数(OFFSET/LIMIT),只有"to-one关联JOIN+批量加载明细"策略使用
type Page struct {
	Offset int
	Limit  int
}

// DefaultLimit 默认每页数量
const DefaultLimit = 100

// NewPage 创建分页参数,limit为0时使用默认值
func NewPage(offset, limit int) Page {
	if limit == 0 {
		limit = DefaultLimit
	}
	return Page{Offset: offset, Limit: limit}
}

// Validate 校验分页参数
// offset >= 0, 1 <= limit <= maxLimit
func (p Page) Validate(maxLimit int) error {
	if p.Offset < 0 {
		return apperrors.Detail(ErrInvalidPage, "offset不能为负数: %d", p.Offset)
	}
	if p.Limit < 1 || p.Limit > maxLimit {
		return apperrors.Detail(ErrInvalidPage, "limit必须在1到%d之间: %d", maxLimit, p.Limit)
	}
	return nil
}
