package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/jpashop/internal/domain/item"
	"github.com/xiebiao/jpashop/internal/interface/http/dto"
	"github.com/xiebiao/jpashop/pkg/response"
)

// ItemHandler 商品HTTP处理器
type ItemHandler struct {
	items item.Service
}

// NewItemHandler 创建商品处理器
func NewItemHandler(items item.Service) *ItemHandler {
	return &ItemHandler{items: items}
}

// List 商品列表
// @Summary      商品列表
// @Tags         商品
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.ItemResponse}
// @Router       /api/v1/items [get]
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.items.FindItems(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.ItemResponse, len(items))
	for i, it := range items {
		resp[i] = dto.NewItemResponse(it)
	}
	response.Success(c, resp)
}

// Create 新增图书
// @Summary      新增图书
// @Tags         商品
// @Accept       json
// @Produce      json
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.ItemResponse}
// @Router       /api/v1/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	book := item.NewBook(req.Name, req.Price, req.StockQuantity, req.Author, req.ISBN)
	if err := h.items.SaveItem(c.Request.Context(), book); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewItemResponse(book))
}

// Get 商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.ItemResponse}
// @Failure      200 {object} response.Response "40402 商品不存在"
// @Router       /api/v1/items/{id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	it, err := h.items.FindOne(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewItemResponse(it))
}

// Update 修改图书
// 教学要点:通过领域服务先查询再修改,不用请求数据构造新实体直接覆盖
// @Summary      修改图书
// @Tags         商品
// @Accept       json
// @Produce      json
// @Param        id      path int             true "商品ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.ItemResponse}
// @Router       /api/v1/items/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	it, err := h.items.UpdateItem(c.Request.Context(), id, item.UpdateParams{
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Author:        req.Author,
		ISBN:          req.ISBN,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewItemResponse(it))
}
