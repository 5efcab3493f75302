package loans

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	"github.com/schulbib/schulbib-backend/pkg/pagination"
)

// Repository handles loan persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to loan operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a loan by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RoomLoan, error) {
	var loan models.RoomLoan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindByIDWithTx loads a loan using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.RoomLoan, error) {
	var loan models.RoomLoan
	if err := tx.Where("id = ?", id).First(&loan).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindCopyByID loads a copy by its UUID.
func (r *Repository) FindCopyByID(ctx context.Context, id uuid.UUID) (*models.Copy, error) {
	var copy models.Copy
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&copy).Error; err != nil {
		return nil, err
	}
	return &copy, nil
}

// FindCopyByIDWithTx loads a copy using the provided transaction.
func (r *Repository) FindCopyByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Copy, error) {
	var copy models.Copy
	if err := tx.Where("id = ?", id).First(&copy).Error; err != nil {
		return nil, err
	}
	return &copy, nil
}

// Create persists a new loan row.
func (r *Repository) Create(ctx context.Context, loan *models.RoomLoan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// Save writes the provided loan row back.
func (r *Repository) Save(ctx context.Context, loan *models.RoomLoan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// SaveWithTx writes the loan inside the provided transaction.
func (r *Repository) SaveWithTx(tx *gorm.DB, loan *models.RoomLoan) error {
	return tx.Save(loan).Error
}

// List returns one keyset page of loans, newest first.
func (r *Repository) List(ctx context.Context, cursor *pagination.Cursor, limit int, filter ListLoansFilter) ([]models.RoomLoan, error) {
	query := r.db.WithContext(ctx).
		Model(&models.RoomLoan{}).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.overdueBefore != nil {
		query = query.Where("status = ? AND due_at < ?", enums.LoanStatusOut, *filter.overdueBefore)
	}

	var loans []models.RoomLoan
	if err := query.Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}
