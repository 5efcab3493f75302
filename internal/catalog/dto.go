package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/enums"
)

// CreateTitleInput carries the validated fields for a new catalog entry.
// SubcategoryName defaults to the catch-all subcategory when empty.
type CreateTitleInput struct {
	Name            string
	CategoryName    string
	SubcategoryName string
	MediaType       enums.MediaType
	Authors         *string
	Publisher       *string
	PublishedAt     *string
	Language        *string
	CoverURL        *string
	IdentifierType  enums.IdentifierType
	IdentifierValue *string
	HomeLocation    string
}

// UpdateTitleInput captures the mutable title fields. The short code and the
// category assignment are immutable after creation; nil fields are left
// untouched.
type UpdateTitleInput struct {
	Name            *string
	Authors         *string
	Publisher       *string
	PublishedAt     *string
	Language        *string
	CoverURL        *string
	MediaType       *enums.MediaType
	IdentifierType  *enums.IdentifierType
	IdentifierValue *string
	IsActive        *bool
}

// CopySummaryDTO is the copy projection embedded in title responses.
type CopySummaryDTO struct {
	ID           uuid.UUID       `json:"id"`
	CopyCode     string          `json:"copy_code"`
	State        enums.CopyState `json:"state"`
	HomeLocation string          `json:"home_location"`
	PresenceOnly bool            `json:"presence_only"`
	IsActive     bool            `json:"is_active"`
}

// TitleDTO is the API projection of a catalog title.
type TitleDTO struct {
	ID              uuid.UUID            `json:"id"`
	ShortCode       string               `json:"short_code"`
	Name            string               `json:"name"`
	Authors         *string              `json:"authors,omitempty"`
	Publisher       *string              `json:"publisher,omitempty"`
	PublishedAt     *string              `json:"published_at,omitempty"`
	Language        *string              `json:"language,omitempty"`
	CoverURL        *string              `json:"cover_url,omitempty"`
	MediaType       enums.MediaType      `json:"media_type"`
	IdentifierType  enums.IdentifierType `json:"identifier_type"`
	IdentifierValue *string              `json:"identifier_value,omitempty"`
	CategoryID      uuid.UUID            `json:"category_id"`
	SubcategoryID   uuid.UUID            `json:"subcategory_id"`
	IsActive        bool                 `json:"is_active"`
	Copies          []CopySummaryDTO     `json:"copies,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// ListTitlesResult is one cursor page of titles.
type ListTitlesResult struct {
	Titles     []TitleDTO `json:"titles"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ToCopySummaryDTO maps a copy row to its title-embedded projection.
func ToCopySummaryDTO(copy models.Copy) CopySummaryDTO {
	return CopySummaryDTO{
		ID:           copy.ID,
		CopyCode:     copy.CopyCode,
		State:        copy.State,
		HomeLocation: copy.HomeLocation,
		PresenceOnly: copy.PresenceOnly,
		IsActive:     copy.IsActive,
	}
}

// ToTitleDTO maps a title row (and any preloaded copies) to its projection.
func ToTitleDTO(title models.Title) TitleDTO {
	dto := TitleDTO{
		ID:              title.ID,
		ShortCode:       title.ShortCode,
		Name:            title.Name,
		Authors:         title.Authors,
		Publisher:       title.Publisher,
		PublishedAt:     title.PublishedAt,
		Language:        title.Language,
		CoverURL:        title.CoverURL,
		MediaType:       title.MediaType,
		IdentifierType:  title.IdentifierType,
		IdentifierValue: title.IdentifierValue,
		CategoryID:      title.CategoryID,
		SubcategoryID:   title.SubcategoryID,
		IsActive:        title.IsActive,
		CreatedAt:       title.CreatedAt,
		UpdatedAt:       title.UpdatedAt,
	}
	for _, copy := range title.Copies {
		dto.Copies = append(dto.Copies, ToCopySummaryDTO(copy))
	}
	return dto
}
