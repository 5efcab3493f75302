package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the top level of the catalog hierarchy. Categories are created
// once per distinct name and never deleted, only deactivated.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Code      string    `gorm:"column:code;not null;uniqueIndex:uniq_categories_code"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
