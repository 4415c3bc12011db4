package generation

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"shop-copy-ai-api/internal/application/identity"
	"shop-copy-ai-api/internal/application/ledger"
	"shop-copy-ai-api/internal/application/usage"
	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/domain/repository"
	einoobs "shop-copy-ai-api/internal/observability/eino"
	pkgerrors "shop-copy-ai-api/pkg/errors"
	"shop-copy-ai-api/pkg/logger"
	"shop-copy-ai-api/pkg/metrics"
)

// GenerateInput 生成请求输入
type GenerateInput struct {
	StoreID       string
	ProductRef    string
	Title         string
	Description   string
	CustomRequest string
	Provider      string
}

// GenerateOutput 生成结果
type GenerateOutput struct {
	Description *entity.Description
	Balance     int
}

// Orchestrator 描述生成编排器。
// 流程：解析商家 → 归一化商品引用 → 日配额校验 → 余额校验 →
// 模型调用（带重试）→ 落库 → 扣减额度。
// 扣减失败不回滚已落库的描述，只记录告警与指标。
type Orchestrator struct {
	resolver     *identity.Resolver
	governor     *usage.Governor
	ledger       *ledger.Service
	descriptions repository.DescriptionRepository
	factory      ChatModelFactory
	prompt       *PromptBuilder
	retrier      *Retrier
}

// NewOrchestrator 创建生成编排器
func NewOrchestrator(
	resolver *identity.Resolver,
	governor *usage.Governor,
	ledgerSvc *ledger.Service,
	descriptions repository.DescriptionRepository,
	factory ChatModelFactory,
	prompt *PromptBuilder,
	retrier *Retrier,
) *Orchestrator {
	return &Orchestrator{
		resolver:     resolver,
		governor:     governor,
		ledger:       ledgerSvc,
		descriptions: descriptions,
		factory:      factory,
		prompt:       prompt,
		retrier:      retrier,
	}
}

// Generate 为商品生成一条描述
func (o *Orchestrator) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	if in.StoreID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product title is required")
	}

	merchant, err := o.resolver.ResolveOrCreate(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}

	productID, err := NormalizeProductRef(in.ProductRef)
	if err != nil {
		return nil, err
	}

	if err := o.governor.AssertWithinDailyQuota(ctx, merchant.StoreID); err != nil {
		return nil, err
	}
	if err := o.ledger.AssertSufficient(ctx, merchant.StoreID, 1); err != nil {
		return nil, err
	}

	content, err := o.callModel(ctx, in)
	if err != nil {
		metrics.DescriptionGenerationTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	desc := entity.NewDescription(merchant.StoreID, productID, content)
	if err := o.descriptions.Create(ctx, desc); err != nil {
		metrics.DescriptionGenerationTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	// 扣减失败不回滚描述；描述保留为未计费状态
	charged, err := o.ledger.Consume(ctx, merchant.StoreID, 1)
	if err != nil || !charged {
		metrics.UnchargedDescriptionsTotal.Inc()
		logger.Error(ctx, "description persisted but credit debit failed",
			err, "store_id", merchant.StoreID, "description_id", desc.ID)
	}

	balance, balanceErr := o.ledger.Balance(ctx, merchant.StoreID)
	if balanceErr != nil {
		balance = 0
	}

	metrics.DescriptionGenerationTotal.WithLabelValues("success").Inc()
	return &GenerateOutput{
		Description: desc,
		Balance:     balance,
	}, nil
}

// callModel 调用模型生成文本，失败按退避策略重试
func (o *Orchestrator) callModel(ctx context.Context, in GenerateInput) (string, error) {
	chatModel, err := o.factory.Get(ctx, in.Provider)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeProviderError, "failed to resolve chat model")
	}

	msgs := o.prompt.BuildMessages(PromptInput{
		Title:         in.Title,
		Description:   in.Description,
		CustomRequest: in.CustomRequest,
	})

	ctx = einoobs.WithProvider(ctx, providerLabel(in.Provider))

	start := time.Now()
	var outMsg *schema.Message
	err = o.retrier.Do(ctx, func(ctx context.Context) error {
		var genErr error
		outMsg, genErr = chatModel.Generate(ctx, msgs)
		return genErr
	})
	metrics.DescriptionGenerationDuration.WithLabelValues(providerLabel(in.Provider)).
		Observe(time.Since(start).Seconds())
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeProviderError, "ai generation failed")
	}

	if outMsg == nil {
		return "", pkgerrors.New(pkgerrors.CodeProviderError, "empty llm response")
	}
	content := strings.TrimSpace(outMsg.Content)
	if content == "" {
		return "", pkgerrors.New(pkgerrors.CodeProviderError, "empty generated description")
	}
	return content, nil
}

func providerLabel(provider string) string {
	if provider == "" {
		return "default"
	}
	return provider
}
