package admin

import (
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册管理员API路由
func RegisterAdminRoutes(
	router *gin.RouterGroup,
	userAdminHandler *UserAdminHandler,
	postAdminHandler *PostAdminHandler,
	contentAdminHandler *ContentAdminHandler,
	shopAdminHandler *ShopAdminHandler,
) {
	// 用户管理路由
	users := router.Group("/users")
	{
		users.GET("", userAdminHandler.ListUsers)
		users.GET("/search", userAdminHandler.SearchUsers)
		users.POST("/:id", userAdminHandler.UpdateUser)
		users.POST("/:id/reset-token", userAdminHandler.ResetUserToken)
		users.DELETE("/:id", userAdminHandler.DeleteUser)
	}

	// 文章管理路由
	posts := router.Group("/posts")
	{
		posts.GET("", postAdminHandler.ListPosts)
		posts.GET("/:id", postAdminHandler.GetPost)
		posts.POST("", postAdminHandler.CreatePost)
		posts.POST("/:id", postAdminHandler.UpdatePost)
		posts.DELETE("/:id", postAdminHandler.DeletePost)
	}

	// 留言板管理路由
	messages := router.Group("/messages")
	{
		messages.GET("", contentAdminHandler.ListMessages)
		messages.POST("/:id/reply", contentAdminHandler.ReplyMessage)
		messages.POST("/:id/visible", contentAdminHandler.SetMessageVisible)
		messages.DELETE("/:id", contentAdminHandler.DeleteMessage)
	}

	// 答题管理路由
	questions := router.Group("/questions")
	{
		questions.GET("", contentAdminHandler.ListQuestions)
		questions.POST("", contentAdminHandler.CreateQuestion)
		questions.POST("/:id", contentAdminHandler.UpdateQuestion)
		questions.DELETE("/:id", contentAdminHandler.DeleteQuestion)
	}

	// 话题管理路由
	topics := router.Group("/topics")
	{
		topics.POST("", contentAdminHandler.CreateTopic)
		topics.POST("/:id/status", contentAdminHandler.SetTopicStatus)
		topics.DELETE("/:id", contentAdminHandler.DeleteTopic)
	}

	// 商品与卡密管理路由
	products := router.Group("/products")
	{
		products.GET("", shopAdminHandler.ListProducts)
		products.POST("", shopAdminHandler.CreateProduct)
		products.POST("/:id", shopAdminHandler.UpdateProduct)
		products.DELETE("/:id", shopAdminHandler.DeleteProduct)
		products.GET("/:id/keys", shopAdminHandler.ListKeys)
		products.POST("/:id/keys", shopAdminHandler.ImportKeys)
	}
	router.DELETE("/keys/:id", shopAdminHandler.DeleteKey)

	// 订单管理路由
	orders := router.Group("/orders")
	{
		orders.GET("", shopAdminHandler.ListOrders)
		orders.POST("/:order_no/cancel", shopAdminHandler.CancelOrder)
		orders.POST("/:order_no/complete", shopAdminHandler.CompleteOrder)
		orders.POST("/:order_no/refund", shopAdminHandler.RefundOrder)
	}

	// 支付渠道管理路由
	channels := router.Group("/channels")
	{
		channels.GET("", shopAdminHandler.ListChannels)
		channels.POST("/:code", shopAdminHandler.UpdateChannel)
		channels.POST("/:code/enabled", shopAdminHandler.SetChannelEnabled)
	}
}
