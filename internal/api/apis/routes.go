package apis

import (
	"starweb/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes 注册不需要认证的路由
func RegisterPublicRoutes(
	v1 *gin.RouterGroup,
	userHandler *handler.UserHandler,
	postHandler *handler.PostHandler,
	guestbookHandler *handler.GuestbookHandler,
	quizHandler *handler.QuizHandler,
	topicHandler *handler.TopicHandler,
	shopHandler *handler.ShopHandler,
	notifyHandler *handler.NotifyHandler,
) {
	// 用户公开路由
	v1.POST("/user/send_message", userHandler.SendMessage)
	v1.POST("/user/register", userHandler.Register)
	v1.POST("/user/login", userHandler.Login)
	v1.POST("/user/reset_password", userHandler.ResetPassword)

	// 博客公开路由
	v1.GET("/posts", postHandler.GetPosts)
	v1.GET("/posts/:id", postHandler.GetPost)
	v1.GET("/posts/categories", postHandler.GetCategories)

	// 留言板公开路由
	v1.GET("/guestbook", guestbookHandler.GetMessages)
	v1.POST("/guestbook", guestbookHandler.PostMessage)

	// 答题公开路由（取题不需要登录）
	v1.GET("/quiz/questions", quizHandler.GetQuestions)

	// 话题公开路由
	v1.GET("/topics", topicHandler.GetTopics)

	// 商城公开路由
	v1.GET("/shop/products", shopHandler.GetProducts)
	v1.GET("/shop/channels", shopHandler.GetChannels)

	// 支付异步通知回调，渠道服务器调用
	v1.POST("/pay/notify/:channel", notifyHandler.HandleNotify)
	v1.GET("/pay/notify/:channel", notifyHandler.HandleNotify)
}

// RegisterAuthRoutes 注册需要认证的路由
func RegisterAuthRoutes(
	router *gin.RouterGroup,
	userHandler *handler.UserHandler,
	quizHandler *handler.QuizHandler,
	topicHandler *handler.TopicHandler,
	shopHandler *handler.ShopHandler,
) {
	// 用户信息
	router.GET("/user/info", userHandler.GetUserInfo)

	// 答题
	router.POST("/quiz/answer", quizHandler.SubmitAnswer)
	router.GET("/quiz/score", quizHandler.GetTodayScore)

	// 话题投票
	router.POST("/topics/:id/vote", topicHandler.Vote)

	// 商城
	shop := router.Group("/shop")
	{
		shop.POST("/checkout", shopHandler.Checkout)
		shop.GET("/orders", shopHandler.GetUserOrders)
		shop.GET("/order/status", shopHandler.GetOrderStatus)
	}
}
