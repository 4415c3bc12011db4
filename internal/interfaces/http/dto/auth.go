package dto

// MerchantResponse 商家信息响应
type MerchantResponse struct {
	StoreID    string `json:"storeID"`
	Email      string `json:"email,omitempty"`
	Membership string `json:"membership"`
}

// ChangeMembershipRequest 会员等级变更请求
type ChangeMembershipRequest struct {
	Membership string `json:"membership" binding:"required"`
}
