package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/xiebiao/bookmall/internal/application/book"
	appcart "github.com/xiebiao/bookmall/internal/application/cart"
	appinventory "github.com/xiebiao/bookmall/internal/application/inventory"
	apporder "github.com/xiebiao/bookmall/internal/application/order"
	appshipping "github.com/xiebiao/bookmall/internal/application/shipping"
	appuser "github.com/xiebiao/bookmall/internal/application/user"
	"github.com/xiebiao/bookmall/internal/infrastructure/config"
	"github.com/xiebiao/bookmall/internal/infrastructure/event"
	"github.com/xiebiao/bookmall/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookmall/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookmall/internal/interface/http/handler"
	"github.com/xiebiao/bookmall/internal/interface/http/middleware"
	"github.com/xiebiao/bookmall/pkg/jwt"
	"github.com/xiebiao/bookmall/pkg/metrics"
	"github.com/xiebiao/bookmall/pkg/mq"
	"github.com/xiebiao/bookmall/pkg/response"
	"github.com/xiebiao/bookmall/pkg/tracing"
)

// main 主程序入口
// 说明：手动依赖注入；cmd/api/wire.go里有等价的Wire版本
// （运行`wire gen ./cmd/api`生成wire_gen.go后可切换）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化指标（promauto注册到默认Registry，/metrics暴露）
	metrics.InitMetrics()

	// 3. 初始化链路追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("bookmall-api", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer shutdown(context.Background())
		fmt.Printf("  - 链路追踪: %s\n", cfg.Tracing.Endpoint)
	}

	// 4. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 5. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 6. 初始化事件发布器（RabbitMQ可选，未启用时退化为no-op）
	publisher := event.NewNopPublisher()
	if cfg.MQ.Enabled {
		mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		defer mqPublisher.Close()
		publisher = event.NewPublisher(mqPublisher)
		fmt.Printf("  - 消息队列: %s (exchange=%s)\n", cfg.MQ.URL, cfg.MQ.Exchange)
	}

	// 7. 依赖注入（手动组装）
	// 依赖链：Repository ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	shippingRepo := mysql.NewShippingRepository(db)
	inventoryRepo := mysql.NewInventoryRepository(db)
	inventoryLogRepo := mysql.NewInventoryLogRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userRepo)
	loginUseCase := appuser.NewLoginUseCase(userRepo, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)

	publishBookUseCase := appbook.NewPublishBookUseCase(bookRepo, inventoryRepo, inventoryLogRepo, txManager)
	listBooksUseCase := appbook.NewListBooksUseCase(bookRepo)
	getBookUseCase := appbook.NewGetBookUseCase(bookRepo, inventoryRepo)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookRepo, inventoryRepo)

	restockUseCase := appinventory.NewRestockUseCase(inventoryRepo, inventoryLogRepo, txManager)
	listLogsUseCase := appinventory.NewListLogsUseCase(inventoryLogRepo)

	addItemUseCase := appcart.NewAddItemUseCase(cartRepo, bookRepo)
	updateItemUseCase := appcart.NewUpdateItemUseCase(cartRepo)
	removeItemUseCase := appcart.NewRemoveItemUseCase(cartRepo)
	viewCartUseCase := appcart.NewViewCartUseCase(cartRepo)

	placeOrderUseCase := apporder.NewPlaceOrderUseCase(
		cartRepo, orderRepo, shippingRepo, inventoryRepo, inventoryLogRepo, txManager, publisher)
	cancelOrderUseCase := apporder.NewCancelOrderUseCase(
		orderRepo, inventoryRepo, inventoryLogRepo, txManager, publisher)
	advanceOrderUseCase := apporder.NewAdvanceOrderUseCase(orderRepo)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo)
	listOrdersUseCase := apporder.NewListOrdersUseCase(orderRepo)

	listMethodsUseCase := appshipping.NewListMethodsUseCase(shippingRepo)
	createMethodUseCase := appshipping.NewCreateMethodUseCase(shippingRepo)
	deactivateMethodUseCase := appshipping.NewDeactivateMethodUseCase(shippingRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, jwtManager)
	bookHandler := handler.NewBookHandler(publishBookUseCase, listBooksUseCase, getBookUseCase,
		updateBookUseCase, restockUseCase, listLogsUseCase)
	cartHandler := handler.NewCartHandler(addItemUseCase, updateItemUseCase, removeItemUseCase, viewCartUseCase)
	orderHandler := handler.NewOrderHandler(placeOrderUseCase, cancelOrderUseCase, advanceOrderUseCase,
		getOrderUseCase, listOrdersUseCase)
	shippingHandler := handler.NewShippingHandler(listMethodsUseCase, createMethodUseCase, deactivateMethodUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 9. 注册路由
	registerRoutes(r, userHandler, bookHandler, cartHandler, orderHandler, shippingHandler, authMiddleware)

	// 10. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   指标端点: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
// 权限分层：
// - 公开：注册/登录/刷新Token、图书浏览、配送方式列表
// - 登录：购物车、下单、取消、我的订单
// - 店员：上架/补货/库存流水、订单状态推进、配送方式管理
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	shippingHandler *handler.ShippingHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档路由
	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	// 生产环境建议禁用或添加访问控制
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口，不需要登录）
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/refresh", userHandler.RefreshToken)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 图书模块（浏览公开，上架/补货是店员操作）
		books := v1.Group("/books")
		{
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)

			staffBooks := books.Group("", authMiddleware.RequireAuth(), authMiddleware.RequireStaff())
			{
				staffBooks.POST("", bookHandler.PublishBook)
				staffBooks.PUT("/:id", bookHandler.UpdateBook)
				staffBooks.POST("/:id/restock", bookHandler.Restock)
				staffBooks.GET("/:id/stock-logs", bookHandler.ListStockLogs)
			}
		}

		// 配送模块（列表公开，管理是店员操作）
		shippingMethods := v1.Group("/shipping-methods")
		{
			shippingMethods.GET("", shippingHandler.ListMethods)

			staffShipping := shippingMethods.Group("", authMiddleware.RequireAuth(), authMiddleware.RequireStaff())
			{
				staffShipping.POST("", shippingHandler.CreateMethod)
				staffShipping.DELETE("/:id", shippingHandler.DeactivateMethod)
			}
		}

		// 购物车模块（都需要登录）
		cart := v1.Group("/cart")
		cart.Use(authMiddleware.RequireAuth())
		{
			cart.GET("", cartHandler.ViewCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:book_id", cartHandler.UpdateItem)
			cart.DELETE("/items/:book_id", cartHandler.RemoveItem)
		}

		// 订单模块（都需要登录，状态推进仅店员）
		orders := v1.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			orders.POST("", orderHandler.PlaceOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.PUT("/:id/status", authMiddleware.RequireStaff(), orderHandler.AdvanceOrder)
		}
	}
}
