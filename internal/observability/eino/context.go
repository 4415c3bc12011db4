package eino

import "context"

type providerKey struct{}

// WithProvider 将供应商名称写入 Context，供回调中的指标标签使用
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey{}, provider)
}

// ProviderFromContext 读取供应商名称，未设置时返回 "default"
func ProviderFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(providerKey{}).(string); ok && v != "" {
		return v
	}
	return "default"
}
