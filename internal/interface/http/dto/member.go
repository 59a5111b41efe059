package dto

// CreateMemberRequest 注册会员请求
// 请求结构与实体分离:实体字段变化不会影响API
type CreateMemberRequest struct {
	Name    string          `json:"name" binding:"required,max=50" example:"userA"`
	Address *AddressRequest `json:"address"`
}

// AddressRequest 地址
type AddressRequest struct {
	City    string `json:"city" example:"서울"`
	Street  string `json:"street" example:"강가"`
	Zipcode string `json:"zipcode" example:"123-123"`
}

// CreateMemberResponse 注册会员响应
type CreateMemberResponse struct {
	ID uint `json:"id" example:"1"`
}

// UpdateMemberRequest 修改会员请求
type UpdateMemberRequest struct {
	Name string `json:"name" binding:"required,max=50" example:"new-hello"`
}

// UpdateMemberResponse 修改会员响应
type UpdateMemberResponse struct {
	ID   uint   `json:"id" example:"1"`
	Name string `json:"name" example:"new-hello"`
}

// MemberNameDTO 会员列表只返回名称
type MemberNameDTO struct {
	Name string `json:"name" example:"userA"`
}

// Result 列表外再包一层对象
// 以后需要加count等字段时不破坏响应结构
type Result struct {
	Count int         `json:"count"`
	Data  interface{} `json:"data"`
}
