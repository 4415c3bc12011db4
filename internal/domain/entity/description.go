package entity

import (
	"time"
)

// Description 商品描述实体，保存生成结果的历史版本
type Description struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   string    `json:"store_id" gorm:"type:varchar(255);index;not null"`
	ProductID string    `json:"product_id" gorm:"type:varchar(64);index;not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
}

// TableName 指定表名
func (Description) TableName() string {
	return "descriptions"
}

// NewDescription 创建新的商品描述记录
func NewDescription(storeID, productID, body string) *Description {
	return &Description{
		StoreID:   storeID,
		ProductID: productID,
		Body:      body,
		CreatedAt: time.Now(),
	}
}
