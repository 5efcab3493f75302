package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/pkg/enums"
)

// RoomLoan records one lending cycle for a copy. At most one loan per copy is
// in a non-returned status at a time; that invariant is enforced through the
// copy state machine, not a uniqueness constraint.
type RoomLoan struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CopyID     uuid.UUID        `gorm:"column:copy_id;type:uuid;not null;index"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Status     enums.LoanStatus `gorm:"column:status;not null;default:requested"`
	DueAt      *time.Time       `gorm:"column:due_at"`
	ApprovedAt *time.Time       `gorm:"column:approved_at"`
	ReturnedAt *time.Time       `gorm:"column:returned_at"`
	Note       *string          `gorm:"column:note"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
