package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/pkg/enums"
)

// Title is one catalog entry. ShortCode is assigned at creation from the
// category code, subcategory code and the allocated sequence number; it is
// immutable afterwards.
type Title struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ShortCode       string               `gorm:"column:short_code;not null;uniqueIndex:uniq_titles_short_code"`
	Name            string               `gorm:"column:name;not null"`
	Authors         *string              `gorm:"column:authors"`
	Publisher       *string              `gorm:"column:publisher"`
	PublishedAt     *string              `gorm:"column:published_at"`
	Language        *string              `gorm:"column:language"`
	CoverURL        *string              `gorm:"column:cover_url"`
	MediaType       enums.MediaType      `gorm:"column:media_type;not null"`
	IdentifierType  enums.IdentifierType `gorm:"column:identifier_type;not null;default:none"`
	IdentifierValue *string              `gorm:"column:identifier_value"`
	CategoryID      uuid.UUID            `gorm:"column:category_id;type:uuid;not null"`
	SubcategoryID   uuid.UUID            `gorm:"column:subcategory_id;type:uuid;not null"`
	IsActive        bool                 `gorm:"column:is_active;not null"`
	Copies          []Copy               `gorm:"foreignKey:TitleID"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
