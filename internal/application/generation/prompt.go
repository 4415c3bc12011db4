package generation

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"shop-copy-ai-api/internal/config"
)

// PromptInput 提示词构造输入
type PromptInput struct {
	Title         string
	Description   string
	CustomRequest string
}

// PromptBuilder 根据风格配置构造生成提示词。
// 风格规则（标记词汇、禁用开头词、引导句数量）全部来自配置，
// 运行期只有一套提示词方言。
type PromptBuilder struct {
	cfg config.PromptConfig
}

// NewPromptBuilder 创建提示词构造器
func NewPromptBuilder(cfg config.PromptConfig) *PromptBuilder {
	return &PromptBuilder{cfg: cfg}
}

// BuildMessages 构造发送给模型的消息序列
func (b *PromptBuilder) BuildMessages(in PromptInput) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage("You are a helpful assistant that writes short product descriptions."),
		schema.UserMessage(b.buildUserPrompt(in)),
	}
}

// buildUserPrompt 拼接用户提示词：标题必填，旧描述与定制要求按需追加
func (b *PromptBuilder) buildUserPrompt(in PromptInput) string {
	var sb strings.Builder

	sb.WriteString("You are a Shopify assistant that writes product descriptions.\n")
	sb.WriteString("Please produce html for this product description.\n")
	sb.WriteString("Do not refuse. Always produce output.\n")
	sb.WriteString(b.styleContract())

	sb.WriteString(fmt.Sprintf("\nWrite a product description for - %s", in.Title))

	if in.Description != "" {
		sb.WriteString(fmt.Sprintf("\nThe current product description:\n%s", in.Description))
	}
	if in.CustomRequest != "" {
		sb.WriteString(fmt.Sprintf("\n\nCan you also make these special requests for the description:\n%s", in.CustomRequest))
	}

	return sb.String()
}

// styleContract 输出固定的样式约束段落
func (b *PromptBuilder) styleContract() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"Only use <%s>, <%s>, <%s> and <%s> tags for markup.\n",
		b.cfg.HeadingTag, b.cfg.ParagraphTag, b.cfg.ListTag, b.cfg.ListItemTag,
	))

	intro := b.cfg.IntroSentence
	if intro <= 0 {
		intro = 2
	}
	sb.WriteString(fmt.Sprintf(
		"Start with a %d sentence introduction, then list the product features as bullet points.\n",
		intro,
	))
	sb.WriteString("Do not use quotation marks or colons in the text.\n")

	if len(b.cfg.BannedOpeners) > 0 {
		sb.WriteString(fmt.Sprintf(
			"Never start the description with the words: %s.\n",
			strings.Join(b.cfg.BannedOpeners, ", "),
		))
	}

	return sb.String()
}
