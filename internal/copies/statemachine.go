package copies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/enums"
)

// TryReserve moves a copy from in_library to on_loan. The WHERE clause
// re-checks the expected prior state at write time, so of two concurrent
// reservations exactly one sees a single affected row; the loser must treat
// the copy as unavailable rather than retry.
func TryReserve(ctx context.Context, tx *gorm.DB, copyID uuid.UUID) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Copy{}).
		Where("id = ? AND state = ? AND is_active = ?", copyID, enums.CopyStateInLibrary, true).
		Update("state", enums.CopyStateOnLoan)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// TryRelease is the inverse transition. A false result is not necessarily an
// error for the caller: the copy may have been administratively reset to
// missing or damaged while out.
func TryRelease(ctx context.Context, tx *gorm.DB, copyID uuid.UUID) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Copy{}).
		Where("id = ? AND state = ?", copyID, enums.CopyStateOnLoan).
		Update("state", enums.CopyStateInLibrary)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
