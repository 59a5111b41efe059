package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/jpashop/internal/domain/address"
	"github.com/xiebiao/jpashop/internal/domain/member"
	"github.com/xiebiao/jpashop/internal/interface/http/dto"
	"github.com/xiebiao/jpashop/pkg/response"
)

// MemberHandler 会员HTTP处理器
// 设计说明：
// 1. v1接口直接使用实体作为请求/响应，演示这样做的问题
// 2. v2接口使用独立的请求/响应DTO，实体变化不影响API
type MemberHandler struct {
	members member.Service
}

// NewMemberHandler 创建会员处理器
func NewMemberHandler(members member.Service) *MemberHandler {
	return &MemberHandler{members: members}
}

// ListV1 会员列表（直接返回实体）
// @Summary      会员列表v1
// @Description  直接序列化实体，实体字段全部暴露
// @Tags         会员
// @Produce      json
// @Success      200 {object} response.Response "会员实体列表"
// @Router       /api/v1/members [get]
func (h *MemberHandler) ListV1(c *gin.Context) {
	members, err := h.members.FindMembers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, members)
}

// ListV2 会员列表（只返回名称）
// @Summary      会员列表v2
// @Tags         会员
// @Produce      json
// @Success      200 {object} response.Response{data=dto.Result{data=[]dto.MemberNameDTO}}
// @Router       /api/v2/members [get]
func (h *MemberHandler) ListV2(c *gin.Context) {
	members, err := h.members.FindMembers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	names := make([]dto.MemberNameDTO, len(members))
	for i, m := range members {
		names[i] = dto.MemberNameDTO{Name: m.Name}
	}
	response.Success(c, dto.Result{Count: len(names), Data: names})
}

// CreateV1 注册会员（请求体直接绑定到实体）
// @Summary      注册会员v1
// @Tags         会员
// @Accept       json
// @Produce      json
// @Success      200 {object} response.Response{data=dto.CreateMemberResponse}
// @Router       /api/v1/members [post]
func (h *MemberHandler) CreateV1(c *gin.Context) {
	var req member.Member
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	m, err := h.members.Join(c.Request.Context(), req.Name, req.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.CreateMemberResponse{ID: m.ID})
}

// CreateV2 注册会员
// @Summary      注册会员v2
// @Tags         会员
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateMemberRequest true "会员信息"
// @Success      200 {object} response.Response{data=dto.CreateMemberResponse}
// @Failure      200 {object} response.Response "40003 会员已存在"
// @Router       /api/v2/members [post]
func (h *MemberHandler) CreateV2(c *gin.Context) {
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	var addr address.Address
	if req.Address != nil {
		addr = address.New(req.Address.City, req.Address.Street, req.Address.Zipcode)
	}

	m, err := h.members.Join(c.Request.Context(), req.Name, addr)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.CreateMemberResponse{ID: m.ID})
}

// UpdateV2 修改会员名称
// @Summary      修改会员
// @Tags         会员
// @Accept       json
// @Produce      json
// @Param        id      path int                     true "会员ID"
// @Param        request body dto.UpdateMemberRequest true "新名称"
// @Success      200 {object} response.Response{data=dto.UpdateMemberResponse}
// @Router       /api/v2/members/{id} [put]
func (h *MemberHandler) UpdateV2(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	m, err := h.members.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.UpdateMemberResponse{ID: m.ID, Name: m.Name})
}

// pathID 解析路径中的:id,失败时已写出响应
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "ID格式错误")
		return 0, false
	}
	return uint(id), true
}
