package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"shop-copy-ai-api/internal/application/ledger"
	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/domain/repository"
	"shop-copy-ai-api/internal/infrastructure/oauth"
	pkgerrors "shop-copy-ai-api/pkg/errors"
)

type memMerchantRepo struct {
	mu        sync.Mutex
	merchants map[string]*entity.Merchant
}

func newMemMerchantRepo() *memMerchantRepo {
	return &memMerchantRepo{merchants: make(map[string]*entity.Merchant)}
}

func (r *memMerchantRepo) CreateIfAbsent(ctx context.Context, m *entity.Merchant) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[m.StoreID]; ok {
		return false, nil
	}
	r.merchants[m.StoreID] = m
	return true, nil
}

func (r *memMerchantRepo) GetByStoreID(ctx context.Context, storeID string) (*entity.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.merchants[storeID], nil
}

func (r *memMerchantRepo) GetByAccessToken(ctx context.Context, token string) (*entity.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.merchants {
		if m.AccessToken != nil && *m.AccessToken == token {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memMerchantRepo) UpdateAccessToken(ctx context.Context, storeID string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.merchants[storeID]; ok {
		m.AccessToken = token
	}
	return nil
}

func (r *memMerchantRepo) UpdateMembership(ctx context.Context, storeID string, membership entity.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.merchants[storeID]; ok {
		m.Membership = membership
	}
	return nil
}

func (r *memMerchantRepo) UpdateStripeCustomerID(ctx context.Context, storeID, customerID string) error {
	return nil
}

func (r *memMerchantRepo) Redact(ctx context.Context, storeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.merchants[storeID]; ok {
		m.Redact()
	}
	return nil
}

func (r *memMerchantRepo) Delete(ctx context.Context, storeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.merchants, storeID)
	return nil
}

type memCreditRepo struct {
	mu  sync.Mutex
	txs []*entity.CreditTransaction
}

func (r *memCreditRepo) Append(ctx context.Context, tx *entity.CreditTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, tx)
	return nil
}

func (r *memCreditRepo) AppendConsumption(ctx context.Context, storeID string, credits int) (bool, error) {
	return false, nil
}

func (r *memCreditRepo) SumByStoreID(ctx context.Context, storeID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance := 0
	for _, tx := range r.txs {
		if tx.StoreID == storeID {
			balance += tx.Credits
		}
	}
	return balance, nil
}

func (r *memCreditRepo) ListByStoreID(ctx context.Context, storeID string, pagination repository.Pagination) (*repository.PagedResult[*entity.CreditTransaction], error) {
	return repository.NewPagedResult([]*entity.CreditTransaction(nil), 0, pagination), nil
}

func (r *memCreditRepo) GetByStripePaymentID(ctx context.Context, paymentID string) (*entity.CreditTransaction, error) {
	return nil, nil
}

func (r *memCreditRepo) DeleteByStoreID(ctx context.Context, storeID string) error {
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubProvider struct {
	userinfo *oauth.Userinfo
	rejected bool
	err      error
	token    *oauth2.Token
}

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://id.example.com/authorize?state=" + state
}

func (p *stubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.token, nil
}

func (p *stubProvider) VerifyToken(ctx context.Context, accessToken string) (*oauth.Userinfo, bool, error) {
	return p.userinfo, p.rejected, p.err
}

func newTestResolver(provider Provider) (*Resolver, *memMerchantRepo, *memCreditRepo) {
	merchants := newMemMerchantRepo()
	credits := &memCreditRepo{}
	ledgerSvc := ledger.NewService(credits, nil)
	return NewResolver(merchants, ledgerSvc, passthroughTx{}, provider, 10), merchants, credits
}

func TestResolveOrCreateGrantsFreeCreditsOnce(t *testing.T) {
	r, merchants, credits := newTestResolver(nil)
	ctx := context.Background()

	first, err := r.ResolveOrCreate(ctx, "store-1")
	require.NoError(t, err)
	assert.Equal(t, entity.MembershipFree, first.Membership)

	second, err := r.ResolveOrCreate(ctx, "store-1")
	require.NoError(t, err)
	assert.Equal(t, first.StoreID, second.StoreID)

	assert.Len(t, merchants.merchants, 1)
	require.Len(t, credits.txs, 1)
	assert.Equal(t, 10, credits.txs[0].Credits)
	assert.Equal(t, entity.CreditKindFree, credits.txs[0].Kind)
}

func TestResolveOrCreateSetsPlaceholderEmail(t *testing.T) {
	r, merchants, _ := newTestResolver(nil)

	_, err := r.ResolveOrCreate(context.Background(), "store-1")
	require.NoError(t, err)
	assert.Equal(t, "store-1@unknown.com", merchants.merchants["store-1"].Email)
}

func TestResolveOrCreateRejectsInvalidStoredToken(t *testing.T) {
	provider := &stubProvider{}
	r, _, _ := newTestResolver(provider)
	ctx := context.Background()

	_, err := r.StoreToken(ctx, "store-1", "tok-1")
	require.NoError(t, err)

	// 提供商明确拒绝已存令牌时，老商家的解析也要失败
	provider.rejected = true
	_, err = r.ResolveOrCreate(ctx, "store-1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAuthentication))
}

func TestResolveOrCreateDegradesWhenProviderUnreachable(t *testing.T) {
	provider := &stubProvider{}
	r, _, _ := newTestResolver(provider)
	ctx := context.Background()

	_, err := r.StoreToken(ctx, "store-1", "tok-1")
	require.NoError(t, err)

	provider.err = errors.New("connection refused")
	merchant, err := r.ResolveOrCreate(ctx, "store-1")
	require.NoError(t, err)
	assert.Equal(t, "store-1", merchant.StoreID)
}

func TestStoreTokenReplacesRejectedToken(t *testing.T) {
	provider := &stubProvider{}
	r, merchants, _ := newTestResolver(provider)
	ctx := context.Background()

	_, err := r.StoreToken(ctx, "store-1", "tok-old")
	require.NoError(t, err)

	// 换发新令牌不因旧令牌失效而被阻断
	provider.rejected = true
	_, err = r.StoreToken(ctx, "store-1", "tok-new")
	require.NoError(t, err)
	require.NotNil(t, merchants.merchants["store-1"].AccessToken)
	assert.Equal(t, "tok-new", *merchants.merchants["store-1"].AccessToken)
}

func TestResolveOrCreateRequiresStoreID(t *testing.T) {
	r, _, _ := newTestResolver(nil)

	_, err := r.ResolveOrCreate(context.Background(), "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestVerifyAccessToken(t *testing.T) {
	r, _, _ := newTestResolver(nil)
	ctx := context.Background()

	_, err := r.StoreToken(ctx, "store-1", "tok-1")
	require.NoError(t, err)

	merchant, err := r.VerifyAccessToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "store-1", merchant.StoreID)

	_, err = r.VerifyAccessToken(ctx, "tok-unknown")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAuthentication))

	_, err = r.VerifyAccessToken(ctx, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAuthentication))
}

func TestVerifyAccessTokenProviderRejection(t *testing.T) {
	provider := &stubProvider{rejected: true}
	r, _, _ := newTestResolver(provider)
	ctx := context.Background()

	_, err := r.StoreToken(ctx, "store-1", "tok-1")
	require.NoError(t, err)

	_, err = r.VerifyAccessToken(ctx, "tok-1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAuthentication))
}

func TestVerifyAccessTokenDegradesWhenProviderUnreachable(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	r, _, _ := newTestResolver(provider)
	ctx := context.Background()

	_, err := r.StoreToken(ctx, "store-1", "tok-1")
	require.NoError(t, err)

	// 提供商不可达时本地记录仍是权威判定
	merchant, err := r.VerifyAccessToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "store-1", merchant.StoreID)
}

func TestCompleteAuthorizationBindsToken(t *testing.T) {
	provider := &stubProvider{token: &oauth2.Token{AccessToken: "tok-xyz"}}
	r, merchants, _ := newTestResolver(provider)
	ctx := context.Background()

	merchant, err := r.CompleteAuthorization(ctx, "store-1", "code-1")
	require.NoError(t, err)
	require.NotNil(t, merchant.AccessToken)
	assert.Equal(t, "tok-xyz", *merchant.AccessToken)

	stored := merchants.merchants["store-1"]
	require.NotNil(t, stored.AccessToken)
	assert.Equal(t, "tok-xyz", *stored.AccessToken)
}

func TestCompleteAuthorizationExchangeFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("invalid code")}
	r, _, _ := newTestResolver(provider)

	_, err := r.CompleteAuthorization(context.Background(), "store-1", "bad-code")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAuthentication))
}

func TestChangeMembership(t *testing.T) {
	r, merchants, _ := newTestResolver(nil)
	ctx := context.Background()

	_, err := r.ResolveOrCreate(ctx, "store-1")
	require.NoError(t, err)

	require.NoError(t, r.ChangeMembership(ctx, "store-1", entity.MembershipPremium))
	assert.Equal(t, entity.MembershipPremium, merchants.merchants["store-1"].Membership)

	err = r.ChangeMembership(ctx, "store-1", entity.Membership("gold"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = r.ChangeMembership(ctx, "store-404", entity.MembershipPremium)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
