package dto

// PromptSettings 描述生成的提示词设置
type PromptSettings struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	CustomRequest string `json:"customRequest"`
}

// PromptRequest 描述生成请求
type PromptRequest struct {
	ShopifyStoreID string         `json:"shopifyStoreID" binding:"required"`
	ProductID      string         `json:"productID"`
	Provider       string         `json:"provider"`
	PromptSettings PromptSettings `json:"promptSettings" binding:"required"`
}

// PromptResponse 描述生成结果
type PromptResponse struct {
	DescriptionID string `json:"descriptionId"`
	ProductID     string `json:"productId"`
	Description   string `json:"description"`
	Credits       int    `json:"credits"`
}
