package models

import (
	"time"

	"github.com/google/uuid"
)

// Subcategory nests under a category; its code is unique per owning category.
type Subcategory struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null;uniqueIndex:uniq_subcategories_category_code"`
	Name       string    `gorm:"column:name;not null"`
	Code       string    `gorm:"column:code;not null;uniqueIndex:uniq_subcategories_category_code"`
	IsActive   bool      `gorm:"column:is_active;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
