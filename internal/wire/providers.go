// Package wire 提供依赖注入配置
package wire

import (
	"shop-copy-ai-api/internal/application/descriptions"
	"shop-copy-ai-api/internal/application/generation"
	"shop-copy-ai-api/internal/application/identity"
	"shop-copy-ai-api/internal/application/ledger"
	"shop-copy-ai-api/internal/application/usage"
	"shop-copy-ai-api/internal/config"
	"shop-copy-ai-api/internal/domain/repository"
	"shop-copy-ai-api/internal/infrastructure/oauth"
	"shop-copy-ai-api/internal/infrastructure/persistence/postgres"
	"shop-copy-ai-api/internal/infrastructure/persistence/redis"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideGovernor 提供日配额治理器
func ProvideGovernor(cfg *config.Config, descRepo repository.DescriptionRepository) *usage.Governor {
	return usage.NewGovernor(descRepo, cfg.Generation.DailyQuota)
}

// ProvideOAuthClient 提供 OAuth 客户端
func ProvideOAuthClient(cfg *config.Config) *oauth.Client {
	return oauth.NewClient(&cfg.OAuth)
}

// ProvideResolver 提供身份解析器
func ProvideResolver(
	merchants repository.MerchantRepository,
	ledgerSvc *ledger.Service,
	tx repository.Transactor,
	oauthClient *oauth.Client,
	cfg *config.Config,
) *identity.Resolver {
	return identity.NewResolver(merchants, ledgerSvc, tx, oauthClient, cfg.Generation.FreeCreditGrant)
}

// ProvidePromptBuilder 提供提示词构造器
func ProvidePromptBuilder(cfg *config.Config) *generation.PromptBuilder {
	return generation.NewPromptBuilder(cfg.Generation.Prompt)
}

// ProvideRetrier 提供重试器
func ProvideRetrier(cfg *config.Config) *generation.Retrier {
	return generation.NewRetrier(cfg.Generation.Retry)
}

// ProvideDescriptionStore 提供描述查询服务
func ProvideDescriptionStore(cfg *config.Config, descRepo repository.DescriptionRepository) *descriptions.Store {
	return descriptions.NewStore(descRepo, cfg.Generation.RecentLimit)
}
