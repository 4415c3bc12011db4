// Package generation 提供商品描述生成的编排逻辑
package generation

import (
	"strings"

	pkgerrors "shop-copy-ai-api/pkg/errors"
)

// gidPrefix Shopify 全局标识符前缀
const gidPrefix = "gid://shopify/Product/"

// NormalizeProductRef 归一化商品引用。
// 结构化 GID（gid://shopify/Product/<digits>）提取数字尾段；
// 其他字符串原样使用；GID 前缀正确但尾段非数字视为参数错误。
func NormalizeProductRef(raw string) (string, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product reference is required")
	}

	if !strings.HasPrefix(ref, gidPrefix) {
		return ref, nil
	}

	tail := ref[len(gidPrefix):]
	if tail == "" || !isDigits(tail) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "malformed product gid").
			WithDetail(raw)
	}
	return tail, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
