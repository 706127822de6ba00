package api

import (
	"context"
	"starweb/config"
	"starweb/internal/api/admin"
	"starweb/internal/api/apis"
	"starweb/internal/api/handler"
	"starweb/internal/middleware"
	"starweb/internal/repository"
	"starweb/internal/scheduler"
	"starweb/internal/service"
	"starweb/pkg/async"
	"starweb/pkg/email"
	"starweb/pkg/geetest"
	"starweb/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// SetupRouter 设置API路由
func SetupRouter(cfg *config.Config, logger *logger.Logger, db *sqlx.DB, redisClient *redis.Client, geetestClient *geetest.GeetestClient) *gin.Engine {
	// 创建Gin引擎
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 使用中间件
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// 创建异步工作器
	worker := async.NewWorker(100, logger)
	worker.Start(5) // 启动5个工作协程

	// 初始化存储库
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	guestbookRepo := repository.NewGuestbookRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	keyRepo := repository.NewProductKeyRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	channelRepo := repository.NewChannelRepository(db)

	// 初始化邮件服务
	emailService := email.NewService(email.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, logger)

	// 初始化服务
	userService := service.NewUserService(userRepo, redisClient, worker, emailService, logger)
	postService := service.NewPostService(postRepo, redisClient, logger)
	guestbookService := service.NewGuestbookService(guestbookRepo, geetestClient, redisClient, logger)
	quizService := service.NewQuizService(quizRepo, redisClient, logger)
	topicService := service.NewTopicService(topicRepo, redisClient, logger)
	productService := service.NewProductService(productRepo, keyRepo, logger)
	paymentService := service.NewPaymentService(orderRepo, keyRepo, membershipRepo, productRepo,
		channelRepo, userService, redisClient, worker, emailService, logger, cfg)

	// 首次启动创建默认管理员
	if err := userService.EnsureAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
		logger.Error("初始化默认管理员失败", "error", err)
	}

	// 初始化订单调度器
	orderScheduler := scheduler.NewOrderScheduler(orderRepo, cfg.Order.ExpireMinutes, logger)
	orderScheduler.Start() // 启动超时订单取消调度

	// 初始化会员调度器
	membershipScheduler := scheduler.NewMembershipScheduler(membershipRepo, logger)
	membershipScheduler.Start() // 启动到期会员停用调度

	// 初始化浏览量调度器
	viewsScheduler := scheduler.NewViewsScheduler(postService, logger)
	viewsScheduler.Start() // 启动浏览量回写调度

	// 初始化处理器
	userHandler := handler.NewUserHandler(userService, redisClient, logger, geetestClient)
	postHandler := handler.NewPostHandler(postService, logger)
	guestbookHandler := handler.NewGuestbookHandler(guestbookService, logger)
	quizHandler := handler.NewQuizHandler(quizService, logger)
	topicHandler := handler.NewTopicHandler(topicService, logger)
	shopHandler := handler.NewShopHandler(productService, paymentService, logger)
	notifyHandler := handler.NewNotifyHandler(paymentService, logger)

	// 初始化管理员处理器
	userAdminHandler := admin.NewUserAdminHandler(userService, logger)
	postAdminHandler := admin.NewPostAdminHandler(postService, logger)
	contentAdminHandler := admin.NewContentAdminHandler(guestbookService, quizService, topicService, logger)
	shopAdminHandler := admin.NewShopAdminHandler(productService, paymentService, logger)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API版本v1
	v1 := router.Group("/api/v1")

	// 创建需要认证的API路由组
	authRouter := v1.Group("")
	// 为需要认证的API路由添加UserAuth中间件
	authRouter.Use(middleware.UserAuth(userService))

	// 注册不需要认证的路由（如登录、注册、支付回调等）
	apis.RegisterPublicRoutes(v1, userHandler, postHandler, guestbookHandler, quizHandler, topicHandler, shopHandler, notifyHandler)

	// 注册需要认证的API路由
	apis.RegisterAuthRoutes(authRouter, userHandler, quizHandler, topicHandler, shopHandler)

	// 注册管理员API路由
	adminRouter := v1.Group("/admin")
	// 添加管理员认证中间件
	adminRouter.Use(middleware.AdminAuth(userService))
	admin.RegisterAdminRoutes(adminRouter, userAdminHandler, postAdminHandler, contentAdminHandler, shopAdminHandler)

	return router
}
