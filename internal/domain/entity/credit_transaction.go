package entity

import (
	"time"
)

// CreditKind 额度流水类型
type CreditKind string

const (
	// CreditKindFree 注册赠送
	CreditKindFree CreditKind = "free"
	// CreditKindPaid 付费购买
	CreditKindPaid CreditKind = "paid"
	// CreditKindUsed 生成消耗（负数）
	CreditKindUsed CreditKind = "used"
	// CreditKindRefund 退款冲销（负数）
	CreditKindRefund CreditKind = "refund"
)

// Valid 检查流水类型是否合法
func (k CreditKind) Valid() bool {
	switch k {
	case CreditKindFree, CreditKindPaid, CreditKindUsed, CreditKindRefund:
		return true
	}
	return false
}

// CreditTransaction 额度流水，只追加不修改，余额为流水之和
type CreditTransaction struct {
	ID              string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID         string     `json:"store_id" gorm:"type:varchar(255);index;not null"`
	Credits         int        `json:"credits" gorm:"not null"`
	Kind            CreditKind `json:"kind" gorm:"type:varchar(16);not null"`
	StripePaymentID *string    `json:"stripe_payment_id,omitempty" gorm:"type:varchar(255);index"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName 指定表名
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// NewGrant 创建入账流水（free 或 paid）
func NewGrant(storeID string, credits int, kind CreditKind) *CreditTransaction {
	return &CreditTransaction{
		StoreID:   storeID,
		Credits:   credits,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
}

// NewConsumption 创建消耗流水，金额记为负数
func NewConsumption(storeID string, credits int) *CreditTransaction {
	return &CreditTransaction{
		StoreID:   storeID,
		Credits:   -credits,
		Kind:      CreditKindUsed,
		CreatedAt: time.Now(),
	}
}

// NewRefund 创建退款流水，金额记为负数并关联支付单
func NewRefund(storeID string, credits int, stripePaymentID string) *CreditTransaction {
	return &CreditTransaction{
		StoreID:         storeID,
		Credits:         -credits,
		Kind:            CreditKindRefund,
		StripePaymentID: &stripePaymentID,
		CreatedAt:       time.Now(),
	}
}
