package copies

import (
	"time"

	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/enums"
)

// AddCopyInput carries the fields for an additional copy of an existing
// title. HomeLocation falls back to the configured default when empty.
type AddCopyInput struct {
	TitleID      uuid.UUID
	HomeLocation string
	Note         *string
	PresenceOnly bool
}

// PatchCopyInput captures the mutable copy fields; nil fields stay untouched.
// State accepts only administrative values, never on_loan, which belongs to
// the lending transitions alone.
type PatchCopyInput struct {
	HomeLocation *string
	Note         *string
	PresenceOnly *bool
	State        *enums.CopyState
	IsActive     *bool
}

// CopyDTO is the API projection of a physical copy.
type CopyDTO struct {
	ID           uuid.UUID       `json:"id"`
	TitleID      uuid.UUID       `json:"title_id"`
	CopyCode     string          `json:"copy_code"`
	State        enums.CopyState `json:"state"`
	HomeLocation string          `json:"home_location"`
	PresenceOnly bool            `json:"presence_only"`
	Note         *string         `json:"note,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToCopyDTO maps a copy row to its projection.
func ToCopyDTO(copy models.Copy) CopyDTO {
	return CopyDTO{
		ID:           copy.ID,
		TitleID:      copy.TitleID,
		CopyCode:     copy.CopyCode,
		State:        copy.State,
		HomeLocation: copy.HomeLocation,
		PresenceOnly: copy.PresenceOnly,
		Note:         copy.Note,
		IsActive:     copy.IsActive,
		CreatedAt:    copy.CreatedAt,
		UpdatedAt:    copy.UpdatedAt,
	}
}
