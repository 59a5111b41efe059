package member

import (
	apperrors "github.com/xiebiao/jpashop/pkg/errors"
)

// 会员领域错误定义
var (
	// ErrMemberNotFound 会员不存在
	ErrMemberNotFound = apperrors.New(apperrors.ErrCodeMemberNotFound, "会员不存在")

	// ErrDuplicateMember 同名会员已存在
	ErrDuplicateMember = apperrors.New(apperrors.ErrCodeDuplicateMember, "已存在的会员")

	// ErrInvalidName 会员名称不合法
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "会员名称不能为空")
)
