// Package llm 基于 Eino 的 ChatModel 工厂
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"shop-copy-ai-api/internal/config"
)

// EinoFactory 按供应商名称惰性构建并缓存 ChatModel 实例
type EinoFactory struct {
	config *config.LLMConfig
	mu     sync.Mutex
	models map[string]model.BaseChatModel
}

// NewEinoFactory 创建工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 返回指定供应商的 ChatModel，name 为空时使用默认供应商。
// 首次访问时构建，之后复用同一实例。
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok := f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}

	chatModel, err := newOpenAIModel(ctx, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// newOpenAIModel 通过 Eino 的 OpenAI 适配器构建模型，兼容所有 OpenAI 协议的供应商
func newOpenAIModel(ctx context.Context, cfg config.ProviderConfig) (model.BaseChatModel, error) {
	temperature := float32(cfg.Temperature)
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   &cfg.MaxTokens,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
	})
}
