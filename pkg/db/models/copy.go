package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/pkg/enums"
)

// Copy is one physical exemplar of a title. State transitions go through the
// circulation state machine; nothing else writes State.
type Copy struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TitleID      uuid.UUID       `gorm:"column:title_id;type:uuid;not null;index"`
	CopyCode     string          `gorm:"column:copy_code;not null;uniqueIndex:uniq_copies_copy_code"`
	State        enums.CopyState `gorm:"column:state;not null;default:in_library"`
	HomeLocation string          `gorm:"column:home_location;not null"`
	PresenceOnly bool            `gorm:"column:presence_only;not null;default:false"`
	Note         *string         `gorm:"column:note"`
	IsActive     bool            `gorm:"column:is_active;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
