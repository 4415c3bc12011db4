// Package identity 提供商家身份解析与令牌校验
package identity

import (
	"context"

	"golang.org/x/oauth2"

	"shop-copy-ai-api/internal/application/ledger"
	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/domain/repository"
	"shop-copy-ai-api/internal/infrastructure/oauth"
	pkgerrors "shop-copy-ai-api/pkg/errors"
	"shop-copy-ai-api/pkg/logger"
)

// Provider 身份提供商的最小依赖（port），由 oauth.Client 实现
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	VerifyToken(ctx context.Context, accessToken string) (*oauth.Userinfo, bool, error)
}

// Resolver 商家身份解析器
type Resolver struct {
	merchants repository.MerchantRepository
	ledger    *ledger.Service
	tx        repository.Transactor
	provider  Provider
	freeGrant int
}

// NewResolver 创建身份解析器
func NewResolver(
	merchants repository.MerchantRepository,
	ledgerSvc *ledger.Service,
	tx repository.Transactor,
	provider Provider,
	freeGrant int,
) *Resolver {
	return &Resolver{
		merchants: merchants,
		ledger:    ledgerSvc,
		tx:        tx,
		provider:  provider,
		freeGrant: freeGrant,
	}
}

// ResolveOrCreate 按店铺 ID 解析商家，不存在时幂等创建。
// 首次创建与免费额度发放在同一事务内完成，并发创建只会产生
// 一条商家记录和一笔赠送流水。已有商家携带会话令牌时向提供商
// 复核，令牌被明确拒绝则整个请求以认证错误中止。
func (r *Resolver) ResolveOrCreate(ctx context.Context, storeID string) (*entity.Merchant, error) {
	merchant, err := r.resolveOrCreate(ctx, storeID)
	if err != nil {
		return nil, err
	}

	// 提供商网络调用放在事务之外
	if err := r.revalidateStoredToken(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// resolveOrCreate 解析或创建商家，不做令牌复核；
// OAuth 回调换新令牌时走这条路径，旧令牌失效不应阻断换发
func (r *Resolver) resolveOrCreate(ctx context.Context, storeID string) (*entity.Merchant, error) {
	if storeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	var merchant *entity.Merchant
	err := r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		candidate := entity.NewMerchant(storeID)
		created, err := r.merchants.CreateIfAbsent(ctx, candidate)
		if err != nil {
			return err
		}

		if created {
			if r.freeGrant > 0 {
				if err := r.ledger.Grant(ctx, storeID, r.freeGrant, entity.CreditKindFree); err != nil {
					return err
				}
			}
			logger.Info(ctx, "merchant created", "store_id", storeID, "free_grant", r.freeGrant)
			merchant = candidate
			return nil
		}

		existing, err := r.merchants.GetByStoreID(ctx, storeID)
		if err != nil {
			return err
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeInternalError, "merchant vanished after upsert")
		}
		merchant = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merchant, nil
}

// revalidateStoredToken 复核商家已存储的会话令牌。
// 与 VerifyAccessToken 同一策略：只有提供商明确拒绝才失败，
// 提供商不可用按降级放行。新建商家没有令牌，不做复核。
func (r *Resolver) revalidateStoredToken(ctx context.Context, merchant *entity.Merchant) error {
	if r.provider == nil || merchant.AccessToken == nil || *merchant.AccessToken == "" {
		return nil
	}

	_, rejected, err := r.provider.VerifyToken(ctx, *merchant.AccessToken)
	if rejected {
		return pkgerrors.New(pkgerrors.CodeAuthentication, "stored session token rejected by provider")
	}
	if err != nil {
		logger.Warn(ctx, "stored token re-validation degraded, provider unreachable",
			"store_id", merchant.StoreID, "error", err)
	}
	return nil
}

// VerifyAccessToken 校验访问令牌并返回对应商家。
// 本地记录匹配是权威判定；身份提供商复核只有在明确拒绝时
// 才导致失败，网络故障按提供商不可用降级放行。
func (r *Resolver) VerifyAccessToken(ctx context.Context, token string) (*entity.Merchant, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeAuthentication, "missing access token")
	}

	merchant, err := r.merchants.GetByAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeAuthentication, "invalid access token")
	}

	if r.provider != nil {
		_, rejected, verifyErr := r.provider.VerifyToken(ctx, token)
		if rejected {
			return nil, pkgerrors.New(pkgerrors.CodeAuthentication, "token rejected by provider")
		}
		if verifyErr != nil {
			logger.Warn(ctx, "token verification degraded, provider unreachable",
				"store_id", merchant.StoreID, "error", verifyErr)
		}
	}

	return merchant, nil
}

// StoreToken 保存商家的访问令牌（不存在时先创建商家）
func (r *Resolver) StoreToken(ctx context.Context, storeID, token string) (*entity.Merchant, error) {
	merchant, err := r.resolveOrCreate(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if err := r.merchants.UpdateAccessToken(ctx, storeID, &token); err != nil {
		return nil, err
	}
	merchant.AccessToken = &token
	return merchant, nil
}

// ChangeMembership 变更会员等级
func (r *Resolver) ChangeMembership(ctx context.Context, storeID string, membership entity.Membership) error {
	if !membership.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid membership").WithDetail(string(membership))
	}

	merchant, err := r.merchants.GetByStoreID(ctx, storeID)
	if err != nil {
		return err
	}
	if merchant == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}
	return r.merchants.UpdateMembership(ctx, storeID, membership)
}
