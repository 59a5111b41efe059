package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/jpashop/internal/application/order"
	"github.com/xiebiao/jpashop/internal/application/orderquery"
	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/internal/interface/http/dto"
	"github.com/xiebiao/jpashop/pkg/response"
)

// OrderHandler 订单HTTP处理器
// 下单、取消走用例;列表的每个版本对应一种读取方式
type OrderHandler struct {
	createOrder *apporder.CreateOrderUseCase
	cancelOrder *apporder.CancelOrderUseCase
	reader      *orderquery.Reader
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrder *apporder.CreateOrderUseCase,
	cancelOrder *apporder.CancelOrderUseCase,
	reader *orderquery.Reader,
) *OrderHandler {
	return &OrderHandler{
		createOrder: createOrder,
		cancelOrder: cancelOrder,
		reader:      reader,
	}
}

// CreateOrder 下单
// @Summary      下单
// @Description  会员购买单个商品,锁定商品行后扣减库存
// @Tags         订单
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateOrderRequest true "下单信息"
// @Success      200 {object} response.Response{data=dto.CreateOrderResponse} "下单成功"
// @Failure      200 {object} response.Response "40001 库存不足 / 40401 会员不存在 / 40402 商品不存在"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.createOrder.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		MemberID: req.MemberID,
		ItemID:   req.ItemID,
		Count:    req.Count,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.CreateOrderResponse{OrderID: result.OrderID})
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Tags         订单
// @Produce      json
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "40004 已配送 / 40002 已取消 / 40403 订单不存在"
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.cancelOrder.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// bindSearch 绑定查询条件,失败时已写出响应
func bindSearch(c *gin.Context) (order.Search, bool) {
	var req dto.OrderSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return order.Search{}, false
	}
	return req.ToSearch(), true
}

// list 绑定条件、执行读取、写出响应
func list[T any](c *gin.Context, read func(c *gin.Context, search order.Search) (T, error)) {
	search, ok := bindSearch(c)
	if !ok {
		return
	}
	result, err := read(c, search)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListV1 订单列表:懒加载,直接返回实体
// @Summary      订单列表v1(实体)
// @Tags         订单查询
// @Produce      json
// @Param        member_name query string false "会员名(模糊匹配)"
// @Param        status      query string false "ORDERED|CANCELLED"
// @Success      200 {object} response.Response
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListV1(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]*order.Order, error) {
		return h.reader.ListEntities(c.Request.Context(), s)
	})
}

// ListV2 订单列表:懒加载后转DTO
// @Summary      订单列表v2(懒加载DTO)
// @Tags         订单查询
// @Produce      json
// @Param        member_name query string false "会员名(模糊匹配)"
// @Param        status      query string false "ORDERED|CANCELLED"
// @Success      200 {object} response.Response{data=[]orderquery.OrderDTO}
// @Router       /api/v2/orders [get]
func (h *OrderHandler) ListV2(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]orderquery.OrderDTO, error) {
		return h.reader.ListDTOs(c.Request.Context(), s)
	})
}

// ListV3 订单列表:一条SQL JOIN全部关联
// @Summary      订单列表v3(JOIN全部关联,不能分页)
// @Tags         订单查询
// @Produce      json
// @Param        member_name query string false "会员名(模糊匹配)"
// @Param        status      query string false "ORDERED|CANCELLED"
// @Success      200 {object} response.Response{data=[]orderquery.OrderDTO}
// @Router       /api/v3/orders [get]
func (h *OrderHandler) ListV3(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]orderquery.OrderDTO, error) {
		return h.reader.ListWithFetchJoin(c.Request.Context(), s)
	})
}

// ListV31 订单列表:JOIN to-one关联分页,明细批量加载
// @Summary      订单列表v3.1(分页,推荐)
// @Tags         订单查询
// @Produce      json
// @Param        member_name query string false "会员名(模糊匹配)"
// @Param        status      query string false "ORDERED|CANCELLED"
// @Param        offset      query int    false "偏移量" default(0)
// @Param        limit       query int    false "每页数量" default(100)
// @Success      200 {object} response.Response{data=orderquery.PagedOrders}
// @Failure      200 {object} response.Response "40900 分页参数不合法"
// @Router       /api/v3.1/orders [get]
func (h *OrderHandler) ListV31(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	page := req.ToPage()

	list(c, func(c *gin.Context, s order.Search) (orderquery.PagedOrders, error) {
		orders, err := h.reader.ListPaged(c.Request.Context(), s, page)
		if err != nil {
			return orderquery.PagedOrders{}, err
		}
		return orderquery.PagedOrders{Offset: page.Offset, Limit: page.Limit, Orders: orders}, nil
	})
}

// ListV4 订单列表:直接查询DTO,逐个订单查明细
// @Summary      订单列表v4(直接查询DTO)
// @Tags         订单查询
// @Produce      json
// @Param        member_name query string false "会员名(模糊匹配)"
// @Param        status      query string false "ORDERED|CANCELLED"
// @Success      200 {object} response.Response{data=[]orderquery.OrderQueryDTO}
// @Router       /api/v4/orders [get]
func (h *OrderHandler) ListV4(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]orderquery.OrderQueryDTO, error) {
		return h.reader.ListQueryDTOs(c.Request.Context(), s)
	})
}

// ListV5 订单列表:直接查询DTO,明细一条IN查询
// @Summary      订单列表v5(直接查询DTO,明细批量)
// @Tags         订单查询
// @Produce      json
// @Param        member_name query string false "会员名(模糊匹配)"
// @Param        status      query string false "ORDERED|CANCELLED"
// @Success      200 {object} response.Response{data=[]orderquery.OrderQueryDTO}
// @Router       /api/v5/orders [get]
func (h *OrderHandler) ListV5(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]orderquery.OrderQueryDTO, error) {
		return h.reader.ListQueryDTOsBatched(c.Request.Context(), s)
	})
}

// ListV6 订单列表:一条扁平SQL,应用内归组
// @Summary      订单列表v6(扁平查询)
// @Tags         订单查询
// @Produce      json
// @Param        member_name query string false "会员名(模糊匹配)"
// @Param        status      query string false "ORDERED|CANCELLED"
// @Success      200 {object} response.Response{data=[]orderquery.OrderQueryDTO}
// @Router       /api/v6/orders [get]
func (h *OrderHandler) ListV6(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]orderquery.OrderQueryDTO, error) {
		return h.reader.ListFlat(c.Request.Context(), s)
	})
}

// SimpleV1 简单订单:懒加载实体
// @Summary      简单订单v1
// @Tags         订单查询
// @Produce      json
// @Success      200 {object} response.Response
// @Router       /api/v1/simple-orders [get]
func (h *OrderHandler) SimpleV1(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]*order.Order, error) {
		return h.reader.ListSimpleEntities(c.Request.Context(), s)
	})
}

// SimpleV2 简单订单:懒加载DTO
// @Summary      简单订单v2
// @Tags         订单查询
// @Produce      json
// @Success      200 {object} response.Response{data=[]orderquery.SimpleOrderDTO}
// @Router       /api/v2/simple-orders [get]
func (h *OrderHandler) SimpleV2(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]orderquery.SimpleOrderDTO, error) {
		return h.reader.ListSimpleDTOs(c.Request.Context(), s)
	})
}

// SimpleV3 简单订单:JOIN to-one关联
// @Summary      简单订单v3
// @Tags         订单查询
// @Produce      json
// @Success      200 {object} response.Response{data=[]orderquery.SimpleOrderDTO}
// @Router       /api/v3/simple-orders [get]
func (h *OrderHandler) SimpleV3(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]orderquery.SimpleOrderDTO, error) {
		return h.reader.ListSimpleWithFetchJoin(c.Request.Context(), s)
	})
}

// SimpleV4 简单订单:直接查询DTO
// @Summary      简单订单v4
// @Tags         订单查询
// @Produce      json
// @Success      200 {object} response.Response{data=[]orderquery.SimpleOrderDTO}
// @Router       /api/v4/simple-orders [get]
func (h *OrderHandler) SimpleV4(c *gin.Context) {
	list(c, func(c *gin.Context, s order.Search) ([]orderquery.SimpleOrderDTO, error) {
		return h.reader.ListSimpleQueryDTOs(c.Request.Context(), s)
	})
}
