package dto

// ShopRequest Shopify 合规 Webhook 请求体
type ShopRequest struct {
	ShopDomain string `json:"shop_domain"`
	StoreID    string `json:"storeID"`
}

// Store 取请求指向的店铺 ID，shop_domain 优先
func (r ShopRequest) Store() string {
	if r.ShopDomain != "" {
		return r.ShopDomain
	}
	return r.StoreID
}
