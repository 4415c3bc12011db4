// Package entity 定义领域实体
package entity

import (
	"time"
)

// Membership 商家会员等级
type Membership string

const (
	MembershipFree    Membership = "free"
	MembershipPremium Membership = "premium"
)

// Valid 检查会员等级是否合法
func (m Membership) Valid() bool {
	return m == MembershipFree || m == MembershipPremium
}

// Merchant 商家实体，每个 Shopify 店铺对应一条记录
type Merchant struct {
	ID               string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID          string     `json:"store_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	Email            string     `json:"email,omitempty" gorm:"type:varchar(255)"`
	Membership       Membership `json:"membership" gorm:"type:varchar(32);default:'free'"`
	AccessToken      *string    `json:"-" gorm:"type:varchar(512);index"`
	StripeCustomerID *string    `json:"stripe_customer_id,omitempty" gorm:"type:varchar(255)"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}

// RedactedEmail 合规抹除后的邮箱占位值
const RedactedEmail = "[REDACTED]"

// NewMerchant 创建新商家，默认免费会员。
// 自动创建的商家没有真实邮箱，先用占位地址，OAuth 回调时覆盖。
func NewMerchant(storeID string) *Merchant {
	now := time.Now()
	return &Merchant{
		StoreID:    storeID,
		Email:      storeID + "@unknown.com",
		Membership: MembershipFree,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Redact 抹除可识别字段，保留记录本身
func (m *Merchant) Redact() {
	m.Email = RedactedEmail
	m.AccessToken = nil
	m.StripeCustomerID = nil
	m.Membership = MembershipFree
}

// HasStripeCustomer 是否已绑定 Stripe 客户
func (m *Merchant) HasStripeCustomer() bool {
	return m.StripeCustomerID != nil && *m.StripeCustomerID != ""
}
