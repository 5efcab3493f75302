package copies

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schulbib/schulbib-backend/pkg/db/models"
)

// Repository handles copy persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to copy operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a copy by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Copy, error) {
	var copy models.Copy
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&copy).Error; err != nil {
		return nil, err
	}
	return &copy, nil
}

// FindTitleByID loads the owning title, or nil when absent.
func (r *Repository) FindTitleByID(ctx context.Context, id uuid.UUID) (*models.Title, error) {
	var title models.Title
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&title).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &title, nil
}

// MaxCopyCode returns the lexicographically highest copy code for the title,
// or "" when the title has no copies. String ordering matches numeric
// ordering because the trailing number has a fixed zero-padded width.
func (r *Repository) MaxCopyCode(tx *gorm.DB, titleID uuid.UUID) (string, error) {
	var copy models.Copy
	err := tx.Where("title_id = ?", titleID).
		Order("copy_code DESC").
		First(&copy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return copy.CopyCode, nil
}

// Create persists a new copy row inside the provided transaction.
func (r *Repository) Create(tx *gorm.DB, copy *models.Copy) error {
	return tx.Create(copy).Error
}

// Save writes the provided copy row back.
func (r *Repository) Save(ctx context.Context, copy *models.Copy) error {
	return r.db.WithContext(ctx).Save(copy).Error
}

// ListByTitle returns all copies of a title ordered by copy code.
func (r *Repository) ListByTitle(ctx context.Context, titleID uuid.UUID) ([]models.Copy, error) {
	var rows []models.Copy
	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Order("copy_code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
