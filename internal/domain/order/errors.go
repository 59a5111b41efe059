package order

import (
	apperrors "github.com/xiebiao/jpashop/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrAlreadyDelivered 已配送完成的订单不能取消
	ErrAlreadyDelivered = apperrors.New(apperrors.ErrCodeAlreadyDelivered, "已配送完成的订单不能取消")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrInvalidSearch 查询条件不合法
	ErrInvalidSearch = apperrors.New(apperrors.ErrCodeInvalidParams, "查询条件不合法")

	// ErrInvalidPage 分页参数不合法
	ErrInvalidPage = apperrors.New(apperrors.ErrCodeInvalidParams, "分页参数不合法")
)

// 聚合完整性错误
// 订单引用的会员/配送/商品在库里不存在,说明数据完整性已被破坏
// 读取时必须直接失败,不能跳过该订单
var (
	ErrMemberMissing   = apperrors.New(apperrors.ErrCodeAggregateBroken, "订单引用的会员不存在")
	ErrDeliveryMissing = apperrors.New(apperrors.ErrCodeAggregateBroken, "订单引用的配送信息不存在")
	ErrItemMissing     = apperrors.New(apperrors.ErrCodeAggregateBroken, "订单明细引用的商品不存在")
)
