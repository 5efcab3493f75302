package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/pagination"
)

// Repository handles catalog persistence. Registry and allocator methods take
// an explicit transaction handle because they only ever run inside the title
// creation unit.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActiveCategoryByName returns the active category with the exact name,
// or nil when absent.
func (r *Repository) FindActiveCategoryByName(tx *gorm.DB, name string) (*models.Category, error) {
	var category models.Category
	err := tx.Where("name = ? AND is_active = ?", name, true).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CategoryCodeTaken reports whether any category already holds the code.
func (r *Repository) CategoryCodeTaken(tx *gorm.DB, code string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Category{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateCategory persists a new category row.
func (r *Repository) CreateCategory(tx *gorm.DB, category *models.Category) error {
	return tx.Create(category).Error
}

// FindActiveSubcategoryByName returns the active subcategory with the exact
// name under the category, or nil when absent.
func (r *Repository) FindActiveSubcategoryByName(tx *gorm.DB, categoryID uuid.UUID, name string) (*models.Subcategory, error) {
	var subcategory models.Subcategory
	err := tx.Where("category_id = ? AND name = ? AND is_active = ?", categoryID, name, true).
		First(&subcategory).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subcategory, nil
}

// SubcategoryCodeTaken reports whether the code is used under the category.
func (r *Repository) SubcategoryCodeTaken(tx *gorm.DB, categoryID uuid.UUID, code string) (bool, error) {
	var count int64
	err := tx.Model(&models.Subcategory{}).
		Where("category_id = ? AND code = ?", categoryID, code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateSubcategory persists a new subcategory row.
func (r *Repository) CreateSubcategory(tx *gorm.DB, subcategory *models.Subcategory) error {
	return tx.Create(subcategory).Error
}

// FindCounter returns the sequence counter for the pair, or nil when absent.
func (r *Repository) FindCounter(tx *gorm.DB, categoryID, subcategoryID uuid.UUID) (*models.SequenceCounter, error) {
	var counter models.SequenceCounter
	err := tx.Where("category_id = ? AND subcategory_id = ?", categoryID, subcategoryID).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

// CreateCounter persists a new sequence counter row.
func (r *Repository) CreateCounter(tx *gorm.DB, counter *models.SequenceCounter) error {
	return tx.Create(counter).Error
}

// BumpCounter advances the counter from the expected value by one. Returns
// false when the row no longer holds the expected value, meaning a concurrent
// allocation got there first.
func (r *Repository) BumpCounter(tx *gorm.DB, counterID uuid.UUID, expected int) (bool, error) {
	res := tx.Model(&models.SequenceCounter{}).
		Where("id = ? AND next_number = ?", counterID, expected).
		Update("next_number", expected+1)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreateTitle persists a new title row.
func (r *Repository) CreateTitle(tx *gorm.DB, title *models.Title) error {
	return tx.Create(title).Error
}

// CreateCopy persists a new copy row.
func (r *Repository) CreateCopy(tx *gorm.DB, copy *models.Copy) error {
	return tx.Create(copy).Error
}

// FindTitleByID loads a title with its copies.
func (r *Repository) FindTitleByID(ctx context.Context, id uuid.UUID) (*models.Title, error) {
	var title models.Title
	err := r.db.WithContext(ctx).
		Preload("Copies").
		Where("id = ?", id).
		First(&title).Error
	if err != nil {
		return nil, err
	}
	return &title, nil
}

// SaveTitle writes the provided title row back.
func (r *Repository) SaveTitle(ctx context.Context, title *models.Title) error {
	return r.db.WithContext(ctx).Save(title).Error
}

// ListTitles returns one keyset page ordered by creation time descending.
// Search, when set, matches name or short code.
func (r *Repository) ListTitles(ctx context.Context, cursor *pagination.Cursor, limit int, search string) ([]models.Title, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Title{}).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR short_code LIKE ?", like, like)
	}

	var titles []models.Title
	if err := query.Find(&titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}
