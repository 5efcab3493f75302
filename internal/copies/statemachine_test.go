package copies

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/schulbib/schulbib-backend/internal/testdb"
	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/enums"
)

func seedCopy(t *testing.T, conn *gorm.DB, state enums.CopyState, active bool) *models.Copy {
	t.Helper()

	copy := &models.Copy{
		ID:           uuid.New(),
		TitleID:      uuid.New(),
		CopyCode:     "GES-ARC-0001-" + uuid.NewString()[:2],
		State:        state,
		HomeLocation: "Archiv",
		IsActive:     active,
	}
	require.NoError(t, conn.Create(copy).Error)
	return copy
}

func TestTryReserve(t *testing.T) {
	t.Parallel()

	conn := testdb.Open(t)
	ctx := context.Background()
	copy := seedCopy(t, conn, enums.CopyStateInLibrary, true)

	ok, err := TryReserve(ctx, conn, copy.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var reloaded models.Copy
	require.NoError(t, conn.First(&reloaded, "id = ?", copy.ID).Error)
	assert.Equal(t, enums.CopyStateOnLoan, reloaded.State)

	// second reservation must observe the transitioned row and fail
	ok, err = TryReserve(ctx, conn, copy.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeededInactiveCopyStaysInactive(t *testing.T) {
	t.Parallel()

	conn := testdb.Open(t)
	copy := seedCopy(t, conn, enums.CopyStateInLibrary, false)

	// an insert with is_active=false must not be rewritten by a column default
	var reloaded models.Copy
	require.NoError(t, conn.First(&reloaded, "id = ?", copy.ID).Error)
	assert.False(t, reloaded.IsActive)
}

func TestTryReserveSkipsInactive(t *testing.T) {
	t.Parallel()

	conn := testdb.Open(t)
	copy := seedCopy(t, conn, enums.CopyStateInLibrary, false)

	ok, err := TryReserve(context.Background(), conn, copy.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTryReserveMissingRow(t *testing.T) {
	t.Parallel()

	conn := testdb.Open(t)

	ok, err := TryReserve(context.Background(), conn, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTryRelease(t *testing.T) {
	t.Parallel()

	conn := testdb.Open(t)
	ctx := context.Background()
	copy := seedCopy(t, conn, enums.CopyStateOnLoan, true)

	ok, err := TryRelease(ctx, conn, copy.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var reloaded models.Copy
	require.NoError(t, conn.First(&reloaded, "id = ?", copy.ID).Error)
	assert.Equal(t, enums.CopyStateInLibrary, reloaded.State)
}

func TestTryReleaseTolerantOfAdminReset(t *testing.T) {
	t.Parallel()

	conn := testdb.Open(t)
	copy := seedCopy(t, conn, enums.CopyStateDamaged, true)

	ok, err := TryRelease(context.Background(), conn, copy.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	var reloaded models.Copy
	require.NoError(t, conn.First(&reloaded, "id = ?", copy.ID).Error)
	assert.Equal(t, enums.CopyStateDamaged, reloaded.State)
}
