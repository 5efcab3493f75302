package models

import (
	"time"

	"github.com/google/uuid"
)

// SequenceCounter holds the next title number for one category/subcategory
// pair. Only the catalog allocator mutates NextNumber, always inside the
// title-create transaction, so committed numbers are dense.
type SequenceCounter struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID    uuid.UUID `gorm:"column:category_id;type:uuid;not null;uniqueIndex:uniq_sequence_counters_pair"`
	SubcategoryID uuid.UUID `gorm:"column:subcategory_id;type:uuid;not null;uniqueIndex:uniq_sequence_counters_pair"`
	NextNumber    int       `gorm:"column:next_number;not null;default:1"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
