package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-copy-ai-api/internal/application/identity"
	"shop-copy-ai-api/internal/application/ledger"
	"shop-copy-ai-api/internal/application/usage"
	"shop-copy-ai-api/internal/config"
	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/domain/repository"
	pkgerrors "shop-copy-ai-api/pkg/errors"
)

// ---- in-memory fakes ----

type fakeMerchantRepo struct {
	mu        sync.Mutex
	merchants map[string]*entity.Merchant
}

func newFakeMerchantRepo() *fakeMerchantRepo {
	return &fakeMerchantRepo{merchants: make(map[string]*entity.Merchant)}
}

func (r *fakeMerchantRepo) CreateIfAbsent(ctx context.Context, m *entity.Merchant) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[m.StoreID]; ok {
		return false, nil
	}
	m.ID = m.StoreID + "-id"
	r.merchants[m.StoreID] = m
	return true, nil
}

func (r *fakeMerchantRepo) GetByStoreID(ctx context.Context, storeID string) (*entity.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.merchants[storeID], nil
}

func (r *fakeMerchantRepo) GetByAccessToken(ctx context.Context, token string) (*entity.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.merchants {
		if m.AccessToken != nil && *m.AccessToken == token {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMerchantRepo) UpdateAccessToken(ctx context.Context, storeID string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.merchants[storeID]; ok {
		m.AccessToken = token
	}
	return nil
}

func (r *fakeMerchantRepo) UpdateMembership(ctx context.Context, storeID string, membership entity.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.merchants[storeID]; ok {
		m.Membership = membership
	}
	return nil
}

func (r *fakeMerchantRepo) UpdateStripeCustomerID(ctx context.Context, storeID, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.merchants[storeID]; ok {
		m.StripeCustomerID = &customerID
	}
	return nil
}

func (r *fakeMerchantRepo) Redact(ctx context.Context, storeID string) error {
	return nil
}

func (r *fakeMerchantRepo) Delete(ctx context.Context, storeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.merchants, storeID)
	return nil
}

type fakeCreditRepo struct {
	mu  sync.Mutex
	txs []*entity.CreditTransaction
}

func (r *fakeCreditRepo) Append(ctx context.Context, tx *entity.CreditTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, tx)
	return nil
}

func (r *fakeCreditRepo) AppendConsumption(ctx context.Context, storeID string, credits int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance := 0
	for _, tx := range r.txs {
		if tx.StoreID == storeID {
			balance += tx.Credits
		}
	}
	if balance < credits {
		return false, nil
	}
	r.txs = append(r.txs, entity.NewConsumption(storeID, credits))
	return true, nil
}

func (r *fakeCreditRepo) SumByStoreID(ctx context.Context, storeID string) (int, error) {
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

func (r *fakeCreditRepo) ListByStoreID(ctx context.Context, storeID string, pagination repository.Pagination) (*repository.PagedResult[*entity.CreditTransaction], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entity.CreditTransaction
	for _, tx := range r.txs {
		if tx.StoreID == storeID {
			items = append(items, tx)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

func (r *fakeCreditRepo) GetByStripePaymentID(ctx context.Context, paymentID string) (*entity.CreditTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.StripePaymentID != nil && *tx.StripePaymentID == paymentID {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *fakeCreditRepo) DeleteByStoreID(ctx context.Context, storeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.CreditTransaction
	for _, tx := range r.txs {
		if tx.StoreID != storeID {
			kept = append(kept, tx)
		}
	}
	r.txs = kept
	return nil
}

func (r *fakeCreditRepo) transactions(storeID string, kind entity.CreditKind) []*entity.CreditTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CreditTransaction
	for _, tx := range r.txs {
		if tx.StoreID == storeID && tx.Kind == kind {
			out = append(out, tx)
		}
	}
	return out
}

type fakeDescriptionRepo struct {
	mu    sync.Mutex
	descs []*entity.Description
}

func (r *fakeDescriptionRepo) Create(ctx context.Context, desc *entity.Description) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc.ID = "desc-" + desc.ProductID
	r.descs = append(r.descs, desc)
	return nil
}

func (r *fakeDescriptionRepo) ListByStoreID(ctx context.Context, storeID string) ([]*entity.Description, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Description
	for _, d := range r.descs {
		if d.StoreID == storeID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDescriptionRepo) ListByProductID(ctx context.Context, storeID, productID string) ([]*entity.Description, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Description
	for _, d := range r.descs {
		if d.StoreID == storeID && d.ProductID == productID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDescriptionRepo) ListRecentByProductID(ctx context.Context, storeID, productID string, limit int) ([]*entity.Description, error) {
	out, err := r.ListByProductID(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeDescriptionRepo) CountSince(ctx context.Context, storeID string, since, until time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.descs {
		if d.StoreID == storeID && !d.CreatedAt.Before(since) && d.CreatedAt.Before(until) {
			n++
		}
	}
	return n, nil
}

func (r *fakeDescriptionRepo) DeleteByStoreID(ctx context.Context, storeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.Description
	for _, d := range r.descs {
		if d.StoreID != storeID {
			kept = append(kept, d)
		}
	}
	r.descs = kept
	return nil
}

type fakeTransactor struct{}

func (fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeChatModel struct {
	mu       sync.Mutex
	failures int
	calls    int
	content  string
}

func (m *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return nil, errors.New("upstream unavailable")
	}
	return schema.AssistantMessage(m.content, nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *fakeChatModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeFactory struct {
	model model.BaseChatModel
	err   error
}

func (f *fakeFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

// ---- fixtures ----

type orchestratorFixture struct {
	orchestrator *Orchestrator
	merchants    *fakeMerchantRepo
	credits      *fakeCreditRepo
	descs        *fakeDescriptionRepo
	chatModel    *fakeChatModel
}

func newOrchestratorFixture(t *testing.T, freeGrant, dailyQuota int, chatModel *fakeChatModel) *orchestratorFixture {
	t.Helper()

	merchants := newFakeMerchantRepo()
	credits := &fakeCreditRepo{}
	descs := &fakeDescriptionRepo{}

	ledgerSvc := ledger.NewService(credits, nil)
	resolver := identity.NewResolver(merchants, ledgerSvc, fakeTransactor{}, nil, freeGrant)
	governor := usage.NewGovernor(descs, dailyQuota)

	retrier := &Retrier{
		policy: config.RetryConfig{MaxAttempts: 4, BaseDelay: 10 * time.Second, Multiplier: 2.0},
		sleep: func(ctx context.Context, d time.Duration) error {
			return nil
		},
	}

	orch := NewOrchestrator(
		resolver,
		governor,
		ledgerSvc,
		descs,
		&fakeFactory{model: chatModel},
		NewPromptBuilder(testPromptConfig()),
		retrier,
	)

	return &orchestratorFixture{
		orchestrator: orch,
		merchants:    merchants,
		credits:      credits,
		descs:        descs,
		chatModel:    chatModel,
	}
}

// ---- tests ----

func TestGenerateHappyPath(t *testing.T) {
	chatModel := &fakeChatModel{content: "<h3>Snowboard</h3><p>Fast and light.</p>"}
	fx := newOrchestratorFixture(t, 10, 10, chatModel)

	out, err := fx.orchestrator.Generate(context.Background(), GenerateInput{
		StoreID:    "store-1",
		ProductRef: "gid://shopify/Product/999",
		Title:      "Snowboard",
	})
	require.NoError(t, err)

	assert.Equal(t, "999", out.Description.ProductID)
	assert.Equal(t, "store-1", out.Description.StoreID)
	assert.Equal(t, "<h3>Snowboard</h3><p>Fast and light.</p>", out.Description.Body)
	// 新店铺赠送 10，消耗 1
	assert.Equal(t, 9, out.Balance)

	used := fx.credits.transactions("store-1", entity.CreditKindUsed)
	require.Len(t, used, 1)
	assert.Equal(t, -1, used[0].Credits)
}

func TestGenerateCreatesMerchantWithFreeGrantOnce(t *testing.T) {
	chatModel := &fakeChatModel{content: "copy"}
	fx := newOrchestratorFixture(t, 10, 10, chatModel)

	for i := 0; i < 2; i++ {
		_, err := fx.orchestrator.Generate(context.Background(), GenerateInput{
			StoreID:    "store-1",
			ProductRef: "1",
			Title:      "Snowboard",
		})
		require.NoError(t, err)
	}

	free := fx.credits.transactions("store-1", entity.CreditKindFree)
	require.Len(t, free, 1)
	assert.Equal(t, 10, free[0].Credits)
}

func TestGenerateRejectsWhenInsufficientCredits(t *testing.T) {
	chatModel := &fakeChatModel{content: "copy"}
	fx := newOrchestratorFixture(t, 1, 10, chatModel)

	_, err := fx.orchestrator.Generate(context.Background(), GenerateInput{
		StoreID:    "store-1",
		ProductRef: "1",
		Title:      "Snowboard",
	})
	require.NoError(t, err)

	_, err = fx.orchestrator.Generate(context.Background(), GenerateInput{
		StoreID:    "store-1",
		ProductRef: "2",
		Title:      "Snowboard",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientCredits))

	// 余额校验在模型调用之前，第二次请求不应触达模型
	assert.Equal(t, 1, chatModel.callCount())
	require.Len(t, fx.descs.descs, 1)
}

func TestGenerateRejectsWhenDailyQuotaReached(t *testing.T) {
	chatModel := &fakeChatModel{content: "copy"}
	fx := newOrchestratorFixture(t, 100, 2, chatModel)

	for i := 0; i < 2; i++ {
		_, err := fx.orchestrator.Generate(context.Background(), GenerateInput{
			StoreID:    "store-1",
			ProductRef: "1",
			Title:      "Snowboard",
		})
		require.NoError(t, err)
	}

	_, err := fx.orchestrator.Generate(context.Background(), GenerateInput{
		StoreID:    "store-1",
		ProductRef: "1",
		Title:      "Snowboard",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUsageLimitReached))
	assert.Equal(t, 2, chatModel.callCount())
}

func TestGenerateRetriesTransientModelFailures(t *testing.T) {
	chatModel := &fakeChatModel{failures: 3, content: "copy"}
	fx := newOrchestratorFixture(t, 10, 10, chatModel)

	out, err := fx.orchestrator.Generate(context.Background(), GenerateInput{
		StoreID:    "store-1",
		ProductRef: "1",
		Title:      "Snowboard",
	})
	require.NoError(t, err)
	assert.Equal(t, "copy", out.Description.Body)
	assert.Equal(t, 4, chatModel.callCount())
}

func TestGenerateFailsAfterRetriesExhausted(t *testing.T) {
	chatModel := &fakeChatModel{failures: 10, content: "copy"}
	fx := newOrchestratorFixture(t, 10, 10, chatModel)

	_, err := fx.orchestrator.Generate(context.Background(), GenerateInput{
		StoreID:    "store-1",
		ProductRef: "1",
		Title:      "Snowboard",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeProviderError))
	assert.Equal(t, 4, chatModel.callCount())

	// 失败的生成不落库也不扣费
	assert.Empty(t, fx.descs.descs)
	assert.Empty(t, fx.credits.transactions("store-1", entity.CreditKindUsed))
}

func TestGenerateValidation(t *testing.T) {
	chatModel := &fakeChatModel{content: "copy"}
	fx := newOrchestratorFixture(t, 10, 10, chatModel)

	_, err := fx.orchestrator.Generate(context.Background(), GenerateInput{
		StoreID: "", Title: "Snowboard", ProductRef: "1",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = fx.orchestrator.Generate(context.Background(), GenerateInput{
		StoreID: "store-1", Title: "   ", ProductRef: "1",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = fx.orchestrator.Generate(context.Background(), GenerateInput{
		StoreID: "store-1", Title: "Snowboard", ProductRef: "gid://shopify/Product/abc",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Equal(t, 0, chatModel.callCount())
}
