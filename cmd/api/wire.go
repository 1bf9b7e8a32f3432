//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
	"github.com/xiebiao/bookmall/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
	provideEventPublisher,
)

// repositorySet 仓储层依赖
// 教学要点：各应用层包自己声明TxManager接口（接口定义在消费方），
// wire.Bind把*mysql.TxManager绑定到每一个接口上
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewCartRepository,
	mysql.NewOrderRepository,
	mysql.NewShippingRepository,
	mysql.NewInventoryRepository,
	mysql.NewInventoryLogRepository,
	mysql.NewTxManager,
	wire.Bind(new(appbook.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appinventory.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apporder.TxManager), new(*mysql.TxManager)),
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewUpdateBookUseCase,
	appinventory.NewRestockUseCase,
	appinventory.NewListLogsUseCase,
	appcart.NewAddItemUseCase,
	appcart.NewUpdateItemUseCase,
	appcart.NewRemoveItemUseCase,
	appcart.NewViewCartUseCase,
	apporder.NewPlaceOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewAdvanceOrderUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
	appshipping.NewListMethodsUseCase,
	appshipping.NewCreateMethodUseCase,
	appshipping.NewDeactivateMethodUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	handler.NewShippingHandler,
)

// provideJWTManager 从配置创建JWT管理器
// Wire无法自动知道如何从Config提取参数，需要手动编写Provider
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideEventPublisher 按配置创建事件发布器
// MQ未启用时退化为no-op，下单链路不依赖消息队列的可用性
func provideEventPublisher(cfg *config.Config) (event.Publisher, error) {
	if !cfg.MQ.Enabled {
		return event.NewNopPublisher(), nil
	}
	mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, err
	}
	return event.NewPublisher(mqPublisher), nil
}

// provideGinEngine 创建并配置Gin引擎
// 路由注册复用main.go中的registerRoutes
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	shippingHandler *handler.ShippingHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, userHandler, bookHandler, cartHandler, orderHandler, shippingHandler, authMiddleware)
	return r
}

// InitializeApp 初始化整个应用
// wire.Build在编译期分析依赖关系，生成wire_gen.go中的初始化代码
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
