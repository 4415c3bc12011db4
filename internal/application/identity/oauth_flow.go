package identity

import (
	"context"

	"shop-copy-ai-api/internal/domain/entity"
	pkgerrors "shop-copy-ai-api/pkg/errors"
	"shop-copy-ai-api/pkg/logger"
)

// BeginAuthorization 构造授权跳转地址，state 携带店铺 ID
func (r *Resolver) BeginAuthorization(storeID string) (string, error) {
	if storeID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if r.provider == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternalError, "oauth provider not configured")
	}
	return r.provider.AuthCodeURL(storeID), nil
}

// CompleteAuthorization 处理授权回调：用授权码换令牌并绑定到商家
func (r *Resolver) CompleteAuthorization(ctx context.Context, state, code string) (*entity.Merchant, error) {
	if state == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "state is required")
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authorization code is required")
	}
	if r.provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternalError, "oauth provider not configured")
	}

	token, err := r.provider.Exchange(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeAuthentication, "failed to exchange authorization code")
	}

	merchant, err := r.StoreToken(ctx, state, token.AccessToken)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "oauth authorization completed", "store_id", merchant.StoreID)
	return merchant, nil
}
