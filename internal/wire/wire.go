//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"github.com/google/wire"

	"shop-copy-ai-api/internal/application/gdpr"
	"shop-copy-ai-api/internal/application/generation"
	"shop-copy-ai-api/internal/application/identity"
	"shop-copy-ai-api/internal/application/ledger"
	apppayments "shop-copy-ai-api/internal/application/payments"
	"shop-copy-ai-api/internal/config"
	"shop-copy-ai-api/internal/domain/repository"
	"shop-copy-ai-api/internal/infrastructure/llm"
	infrapayments "shop-copy-ai-api/internal/infrastructure/payments"
	"shop-copy-ai-api/internal/infrastructure/persistence/postgres"
	"shop-copy-ai-api/internal/infrastructure/persistence/redis"
	"shop-copy-ai-api/internal/interfaces/http/handler"
	"shop-copy-ai-api/internal/interfaces/http/middleware"
	"shop-copy-ai-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		ServiceSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewMerchantRepository,
	postgres.NewCreditRepository,
	postgres.NewDescriptionRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.MerchantRepository), new(*postgres.MerchantRepository)),
	wire.Bind(new(repository.CreditRepository), new(*postgres.CreditRepository)),
	wire.Bind(new(repository.DescriptionRepository), new(*postgres.DescriptionRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(ledger.BalanceCache), new(*redis.Cache)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// ServiceSet 应用服务提供者集合
var ServiceSet = wire.NewSet(
	ledger.NewService,
	ProvideGovernor,
	ProvideOAuthClient,
	ProvideResolver,
	ProvidePromptBuilder,
	ProvideRetrier,
	llm.NewEinoFactory,
	wire.Bind(new(generation.ChatModelFactory), new(*llm.EinoFactory)),
	generation.NewOrchestrator,
	ProvideDescriptionStore,
	infrapayments.NewStripeGateway,
	wire.Bind(new(apppayments.Gateway), new(*infrapayments.StripeGateway)),
	apppayments.NewService,
	gdpr.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewAuthHandler,
	handler.NewAIHandler,
	handler.NewDescriptionHandler,
	handler.NewPaymentHandler,
	handler.NewShopifyHandler,
	wire.Struct(new(router.Handlers), "*"),
	wire.Bind(new(middleware.TokenVerifier), new(*identity.Resolver)),
	router.New,
)
