package dto

import (
	"github.com/xiebiao/jpashop/internal/domain/order"
)

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	MemberID uint `json:"member_id" binding:"required" example:"1"`
	ItemID   uint `json:"item_id" binding:"required" example:"1"`
	Count    int  `json:"count" binding:"required,min=1,max=999" example:"2"`
}

// CreateOrderResponse 下单响应
type CreateOrderResponse struct {
	OrderID uint `json:"order_id" example:"1"`
}

// OrderSearchRequest 订单查询条件
// 取值合法性由order.Search.Validate统一校验
type OrderSearchRequest struct {
	MemberName string `form:"member_name" example:"userA"`
	Status     string `form:"status" example:"ORDERED"`
}

// ToSearch 转换为领域查询条件
func (r OrderSearchRequest) ToSearch() order.Search {
	return order.Search{
		MemberName: r.MemberName,
		Status:     order.OrderStatus(r.Status),
	}
}

// PageRequest 分页参数
// 范围由order.Page.Validate校验,越界返回ErrInvalidPage
type PageRequest struct {
	Offset int `form:"offset" example:"0"`
	Limit  int `form:"limit" example:"100"`
}

// ToPage 转换为领域分页参数,limit未传时使用默认值
func (r PageRequest) ToPage() order.Page {
	return order.NewPage(r.Offset, r.Limit)
}
