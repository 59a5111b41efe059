//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码（wire_gen.go）
// 3. 修改Provider后运行 `wire gen ./cmd/api` 重新生成
//
// 依赖链：
// Repository ← 领域Service ← UseCase/Reader ← Handler ← gin.Engine

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	log "github.com/sirupsen/logrus"

	apporder "github.com/xiebiao/jpashop/internal/application/order"
	"github.com/xiebiao/jpashop/internal/application/orderquery"
	"github.com/xiebiao/jpashop/internal/domain/item"
	"github.com/xiebiao/jpashop/internal/domain/member"
	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/internal/infrastructure/config"
	"github.com/xiebiao/jpashop/internal/infrastructure/logger"
	"github.com/xiebiao/jpashop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/jpashop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/jpashop/internal/interface/http/handler"
	"github.com/xiebiao/jpashop/internal/interface/http/middleware"
	"github.com/xiebiao/jpashop/pkg/mq"
	"github.com/xiebiao/jpashop/pkg/response"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：配置、日志、数据库连接、订单列表缓存、订单事件发布
var infrastructureSet = wire.NewSet(
	config.Load,
	provideLogger,
	mysql.NewDB,
	provideOrderViewCache,
	provideViewCache,
	provideCacheInvalidator,
	provideEventPublisher,
	provideEvents,
	provideQueryConfig,
)

// repositorySet 仓储层依赖
// TxManager同时充当写事务(下单、取消)和只读事务(订单读取)的执行器
var repositorySet = wire.NewSet(
	mysql.NewMemberRepository,
	mysql.NewItemRepository,
	mysql.NewOrderRepository,
	mysql.NewOrderQueryRepository,
	mysql.NewTxManager,
	wire.Bind(new(order.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(orderquery.ReadOnlyRunner), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	member.NewService,
	item.NewService,
	order.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	apporder.NewCreateOrderUseCase,
	apporder.NewCancelOrderUseCase,
	orderquery.NewReader,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewMemberHandler,
	handler.NewItemHandler,
	handler.NewOrderHandler,
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

// App 应用
// main需要配置(端口、超时、链路追踪)和日志，所以Injector返回整个App而不只是gin.Engine
type App struct {
	Config *config.Config
	Logger *log.Logger
	Engine *gin.Engine
}

func provideLogger(cfg *config.Config) (*log.Logger, error) {
	return logger.New(cfg.Log)
}

func provideQueryConfig(cfg *config.Config) config.QueryConfig {
	return cfg.Query
}

// provideOrderViewCache 创建订单列表缓存
// 未启用缓存时不连接Redis，返回nil
func provideOrderViewCache(cfg *config.Config, l *log.Logger) (*redis.OrderViewCache, func(), error) {
	if !cfg.Cache.Enabled {
		l.Info("订单列表缓存未启用")
		return nil, func() {}, nil
	}

	client, err := redis.NewClient(cfg, l)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			l.WithError(err).Warn("关闭Redis连接失败")
		}
	}
	breaker := redis.NewBreaker("order-view-cache", cfg.Cache, l)
	return redis.NewOrderViewCache(client, cfg.Cache.TTL, breaker), cleanup, nil
}

// provideViewCache 转换成读取器使用的接口
// 教学要点：nil指针装进接口后不等于nil，必须显式返回无类型的nil
func provideViewCache(cache *redis.OrderViewCache) orderquery.ViewCache {
	if cache == nil {
		return nil
	}
	return cache
}

func provideCacheInvalidator(cache *redis.OrderViewCache) apporder.CacheInvalidator {
	if cache == nil {
		return nil
	}
	return cache
}

// provideEventPublisher 连接RabbitMQ发布订单事件
// 未启用时不连接，返回nil
func provideEventPublisher(cfg *config.Config, l *log.Logger) (*mq.Publisher, func(), error) {
	if !cfg.MQ.Enabled {
		return nil, func() {}, nil
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		return nil, nil, err
	}
	l.WithField("exchange", cfg.MQ.Exchange).Info("订单事件发布已启用")

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			l.WithError(err).Warn("关闭RabbitMQ连接失败")
		}
	}
	return publisher, cleanup, nil
}

func provideEvents(publisher *mq.Publisher) apporder.EventPublisher {
	if publisher == nil {
		return nil
	}
	return publisher
}

// provideGinEngine 创建并配置Gin引擎
// 中间件顺序：请求日志 → 请求指标 → panic恢复 → 路由
func provideGinEngine(
	cfg *config.Config,
	l *log.Logger,
	memberHandler *handler.MemberHandler,
	itemHandler *handler.ItemHandler,
	orderHandler *handler.OrderHandler,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	response.SetLogger(l)

	r := gin.New()
	r.Use(middleware.Logger(l), middleware.Metrics(), gin.Recovery())
	handler.RegisterRoutes(r, memberHandler, itemHandler, orderHandler)
	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
// cleanup负责释放Redis和RabbitMQ连接
func InitializeApp() (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		handlerSet,
		provideGinEngine,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
