package dto

import (
	"github.com/xiebiao/jpashop/internal/domain/item"
)

// BookRequest 新增/修改图书请求
type BookRequest struct {
	Name          string `json:"name" binding:"required,max=200" example:"시골 JPA"`
	Price         int64  `json:"price" binding:"min=0" example:"10000"`
	StockQuantity int    `json:"stock_quantity" binding:"min=0" example:"10"`
	Author        string `json:"author" binding:"max=100" example:"kim"`
	ISBN          string `json:"isbn" binding:"max=20" example:"1234"`
}

// ItemResponse 商品响应
type ItemResponse struct {
	ID            uint      `json:"id" example:"1"`
	Kind          item.Kind `json:"kind" example:"BOOK"`
	Name          string    `json:"name" example:"시골 JPA"`
	Price         int64     `json:"price" example:"10000"`
	StockQuantity int       `json:"stock_quantity" example:"10"`
	Author        string    `json:"author,omitempty" example:"kim"`
	ISBN          string    `json:"isbn,omitempty" example:"1234"`
}

// NewItemResponse 实体 → 响应
func NewItemResponse(it *item.Item) ItemResponse {
	resp := ItemResponse{
		ID:            it.ID,
		Kind:          it.Kind,
		Name:          it.Name,
		Price:         it.Price,
		StockQuantity: it.StockQuantity,
	}
	if it.Book != nil {
		resp.Author = it.Book.Author
		resp.ISBN = it.Book.ISBN
	}
	return resp
}
