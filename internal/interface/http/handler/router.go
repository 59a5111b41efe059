package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/jpashop/pkg/response"
)

// RegisterRoutes 注册全部路由
// 版本号对应不同的实现方式,同一资源的多个版本并存用于对比
func RegisterRoutes(r *gin.Engine, members *MemberHandler, items *ItemHandler, orders *OrderHandler) {
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/members", members.ListV1)
		v1.POST("/members", members.CreateV1)

		v1.GET("/items", items.List)
		v1.POST("/items", items.Create)
		v1.GET("/items/:id", items.Get)
		v1.PUT("/items/:id", items.Update)

		v1.POST("/orders", orders.CreateOrder)
		v1.POST("/orders/:id/cancel", orders.CancelOrder)
		v1.GET("/orders", orders.ListV1)
		v1.GET("/simple-orders", orders.SimpleV1)
	}

	v2 := r.Group("/api/v2")
	{
		v2.GET("/members", members.ListV2)
		v2.POST("/members", members.CreateV2)
		v2.PUT("/members/:id", members.UpdateV2)

		v2.GET("/orders", orders.ListV2)
		v2.GET("/simple-orders", orders.SimpleV2)
	}

	r.GET("/api/v3/orders", orders.ListV3)
	r.GET("/api/v3.1/orders", orders.ListV31)
	r.GET("/api/v3/simple-orders", orders.SimpleV3)
	r.GET("/api/v4/orders", orders.ListV4)
	r.GET("/api/v4/simple-orders", orders.SimpleV4)
	r.GET("/api/v5/orders", orders.ListV5)
	r.GET("/api/v6/orders", orders.ListV6)
}
