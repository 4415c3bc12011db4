package dto

import (
	"time"

	"shop-copy-ai-api/internal/domain/entity"
)

// DescriptionItem 描述历史条目
type DescriptionItem struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromDescription 实体转 DTO
func FromDescription(d *entity.Description) DescriptionItem {
	return DescriptionItem{
		ID:        d.ID,
		ProductID: d.ProductID,
		Data:      d.Body,
		CreatedAt: d.CreatedAt,
	}
}

// FromDescriptions 实体列表转 DTO 列表
func FromDescriptions(descs []*entity.Description) []DescriptionItem {
	items := make([]DescriptionItem, 0, len(descs))
	for _, d := range descs {
		items = append(items, FromDescription(d))
	}
	return items
}
