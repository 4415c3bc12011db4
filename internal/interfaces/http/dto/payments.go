package dto

import (
	"time"

	"shop-copy-ai-api/internal/domain/entity"
)

// CreatePaymentIntentRequest 创建支付意图请求
type CreatePaymentIntentRequest struct {
	StoreID      string `json:"storeID" binding:"required"`
	CreditAmount int64  `json:"creditAmount" binding:"required"`
}

// ConfirmPaymentRequest 确认支付请求
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	StoreID         string `json:"storeID"`
}

// RefundRequest 退款请求
type RefundRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	StoreID         string `json:"storeID"`
}

// BalanceResponse 余额响应
type BalanceResponse struct {
	StoreID string `json:"storeID"`
	Credits int    `json:"credits"`
}

// TransactionItem 流水条目
type TransactionItem struct {
	ID              string    `json:"id"`
	Credits         int       `json:"credits"`
	Kind            string    `json:"kind"`
	StripePaymentID *string   `json:"stripePaymentId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FromTransaction 实体转 DTO
func FromTransaction(tx *entity.CreditTransaction) TransactionItem {
	return TransactionItem{
		ID:              tx.ID,
		Credits:         tx.Credits,
		Kind:            string(tx.Kind),
		StripePaymentID: tx.StripePaymentID,
		CreatedAt:       tx.CreatedAt,
	}
}

// FromTransactions 实体列表转 DTO 列表
func FromTransactions(txs []*entity.CreditTransaction) []TransactionItem {
	items := make([]TransactionItem, 0, len(txs))
	for _, tx := range txs {
		items = append(items, FromTransaction(tx))
	}
	return items
}
