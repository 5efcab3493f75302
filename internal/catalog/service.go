package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schulbib/schulbib-backend/pkg/config"
	"github.com/schulbib/schulbib-backend/pkg/db"
	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	pkgerrors "github.com/schulbib/schulbib-backend/pkg/errors"
	"github.com/schulbib/schulbib-backend/pkg/metrics"
	"github.com/schulbib/schulbib-backend/pkg/pagination"
)

// DefaultSubcategoryName is the catch-all bucket used when a title is created
// without an explicit subcategory.
const DefaultSubcategoryName = "Allgemein"

type catalogRepository interface {
	FindActiveCategoryByName(tx *gorm.DB, name string) (*models.Category, error)
	CategoryCodeTaken(tx *gorm.DB, code string) (bool, error)
	CreateCategory(tx *gorm.DB, category *models.Category) error
	FindActiveSubcategoryByName(tx *gorm.DB, categoryID uuid.UUID, name string) (*models.Subcategory, error)
	SubcategoryCodeTaken(tx *gorm.DB, categoryID uuid.UUID, code string) (bool, error)
	CreateSubcategory(tx *gorm.DB, subcategory *models.Subcategory) error
	FindCounter(tx *gorm.DB, categoryID, subcategoryID uuid.UUID) (*models.SequenceCounter, error)
	CreateCounter(tx *gorm.DB, counter *models.SequenceCounter) error
	BumpCounter(tx *gorm.DB, counterID uuid.UUID, expected int) (bool, error)
	CreateTitle(tx *gorm.DB, title *models.Title) error
	CreateCopy(tx *gorm.DB, copy *models.Copy) error
	FindTitleByID(ctx context.Context, id uuid.UUID) (*models.Title, error)
	SaveTitle(ctx context.Context, title *models.Title) error
	ListTitles(ctx context.Context, cursor *pagination.Cursor, limit int, search string) ([]models.Title, error)
}

// Service exposes catalog operations.
type Service interface {
	CreateTitle(ctx context.Context, input CreateTitleInput) (*TitleDTO, error)
	GetTitle(ctx context.Context, id uuid.UUID) (*TitleDTO, error)
	ListTitles(ctx context.Context, params pagination.Params, search string) (*ListTitlesResult, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, input UpdateTitleInput) (*TitleDTO, error)
}

type service struct {
	client   *db.Client
	repo     catalogRepository
	loansCfg config.LoansConfig
	metrics  *metrics.CirculationMetrics
}

// NewService builds the catalog service.
func NewService(client *db.Client, repo catalogRepository, loansCfg config.LoansConfig, m *metrics.CirculationMetrics) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{
		client:   client,
		repo:     repo,
		loansCfg: loansCfg,
		metrics:  m,
	}, nil
}

// CreateTitle allocates the next short code under the category/subcategory
// pair and creates the title together with its first copy. The registry
// lookups, the counter bump and both inserts commit or roll back as one unit,
// so committed sequence numbers are dense.
func (s *service) CreateTitle(ctx context.Context, input CreateTitleInput) (*TitleDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.CategoryName = strings.TrimSpace(input.CategoryName)
	input.SubcategoryName = strings.TrimSpace(input.SubcategoryName)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title name is required")
	}
	if input.CategoryName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if input.SubcategoryName == "" {
		input.SubcategoryName = DefaultSubcategoryName
	}
	if !input.MediaType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media type")
	}
	if input.IdentifierType == "" {
		input.IdentifierType = enums.IdentifierTypeNone
	}
	if !input.IdentifierType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier type")
	}
	if strings.TrimSpace(input.HomeLocation) == "" {
		input.HomeLocation = s.loansCfg.DefaultLocation
	}

	var created models.Title
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		category, err := s.ensureCategory(tx, input.CategoryName)
		if err != nil {
			return err
		}
		subcategory, err := s.ensureSubcategory(tx, category.ID, input.SubcategoryName)
		if err != nil {
			return err
		}
		seq, err := s.allocateSequence(tx, category.ID, subcategory.ID)
		if err != nil {
			return err
		}

		shortCode := FormatShortCode(category.Code, subcategory.Code, seq)
		created = models.Title{
			ID:              uuid.New(),
			ShortCode:       shortCode,
			Name:            input.Name,
			Authors:         input.Authors,
			Publisher:       input.Publisher,
			PublishedAt:     input.PublishedAt,
			Language:        input.Language,
			CoverURL:        input.CoverURL,
			MediaType:       input.MediaType,
			IdentifierType:  input.IdentifierType,
			IdentifierValue: input.IdentifierValue,
			CategoryID:      category.ID,
			SubcategoryID:   subcategory.ID,
			IsActive:        true,
		}
		if err := s.repo.CreateTitle(tx, &created); err != nil {
			if db.IsUniqueViolation(err, "uniq_titles_short_code") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "short code already allocated")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create title")
		}

		firstCopy := models.Copy{
			ID:           uuid.New(),
			TitleID:      created.ID,
			CopyCode:     FormatCopyCode(shortCode, 1),
			State:        enums.CopyStateInLibrary,
			HomeLocation: input.HomeLocation,
			IsActive:     true,
		}
		if err := s.repo.CreateCopy(tx, &firstCopy); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create initial copy")
		}
		created.Copies = []models.Copy{firstCopy}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTitleCreated()
	dto := ToTitleDTO(created)
	return &dto, nil
}

// ensureCategory is the idempotent find-or-create for categories. On a fresh
// name it probes the derived base code, then base2, base3 and so on until a
// free code is found or the probe bound is hit.
func (s *service) ensureCategory(tx *gorm.DB, name string) (*models.Category, error) {
	existing, err := s.repo.FindActiveCategoryByName(tx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up category")
	}
	if existing != nil {
		return existing, nil
	}

	base := DeriveCode(name, CodeMaxLen)
	code, err := s.probeCode(base, func(candidate string) (bool, error) {
		return s.repo.CategoryCodeTaken(tx, candidate)
	})
	if err != nil {
		return nil, err
	}

	category := models.Category{
		ID:       uuid.New(),
		Name:     name,
		Code:     code,
		IsActive: true,
	}
	if err := s.repo.CreateCategory(tx, &category); err != nil {
		if db.IsUniqueViolation(err, "uniq_categories_code") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category code taken concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return &category, nil
}

// ensureSubcategory mirrors ensureCategory with uniqueness scoped to the
// owning category.
func (s *service) ensureSubcategory(tx *gorm.DB, categoryID uuid.UUID, name string) (*models.Subcategory, error) {
	existing, err := s.repo.FindActiveSubcategoryByName(tx, categoryID, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up subcategory")
	}
	if existing != nil {
		return existing, nil
	}

	base := DeriveCode(name, CodeMaxLen)
	code, err := s.probeCode(base, func(candidate string) (bool, error) {
		return s.repo.SubcategoryCodeTaken(tx, categoryID, candidate)
	})
	if err != nil {
		return nil, err
	}

	subcategory := models.Subcategory{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       name,
		Code:       code,
		IsActive:   true,
	}
	if err := s.repo.CreateSubcategory(tx, &subcategory); err != nil {
		if db.IsUniqueViolation(err, "uniq_subcategories_category_code") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "subcategory code taken concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create subcategory")
	}
	return &subcategory, nil
}

func (s *service) probeCode(base string, taken func(candidate string) (bool, error)) (string, error) {
	for i := 1; i <= maxCodeProbes; i++ {
		candidate := base
		if i > 1 {
			candidate = base + strconv.Itoa(i)
		}
		inUse, err := taken(candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "probe code")
		}
		if !inUse {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeResourceExhausted, "code space exhausted for "+base)
}

// allocateSequence reserves the next title number for the pair. The bump is a
// compare-and-swap on the previously read value; losing that race fails the
// whole creation unit rather than risking a duplicated number.
func (s *service) allocateSequence(tx *gorm.DB, categoryID, subcategoryID uuid.UUID) (int, error) {
	counter, err := s.repo.FindCounter(tx, categoryID, subcategoryID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sequence counter")
	}

	if counter == nil {
		fresh := models.SequenceCounter{
			ID:            uuid.New(),
			CategoryID:    categoryID,
			SubcategoryID: subcategoryID,
			NextNumber:    2,
		}
		if err := s.repo.CreateCounter(tx, &fresh); err != nil {
			if db.IsUniqueViolation(err, "uniq_sequence_counters_pair") {
				return 0, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sequence counter created concurrently")
			}
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sequence counter")
		}
		return 1, nil
	}

	ok, err := s.repo.BumpCounter(tx, counter.ID, counter.NextNumber)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bump sequence counter")
	}
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeConflict, "sequence counter advanced concurrently")
	}
	return counter.NextNumber, nil
}

// GetTitle loads one title with its copies.
func (s *service) GetTitle(ctx context.Context, id uuid.UUID) (*TitleDTO, error) {
	title, err := s.repo.FindTitleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "title not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load title")
	}
	dto := ToTitleDTO(*title)
	return &dto, nil
}

// ListTitles returns one cursor page of titles, newest first.
func (s *service) ListTitles(ctx context.Context, params pagination.Params, search string) (*ListTitlesResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListTitles(ctx, cursor, pagination.LimitWithBuffer(params.Limit), strings.TrimSpace(search))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list titles")
	}

	result := &ListTitlesResult{Titles: make([]TitleDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		result.Titles = append(result.Titles, ToTitleDTO(row))
	}
	if hasMore {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// UpdateTitle applies the provided metadata fields. The short code and the
// category assignment never change.
func (s *service) UpdateTitle(ctx context.Context, id uuid.UUID, input UpdateTitleInput) (*TitleDTO, error) {
	title, err := s.repo.FindTitleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "title not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load title")
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title name cannot be empty")
		}
		title.Name = trimmed
	}
	if input.MediaType != nil {
		if !input.MediaType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media type")
		}
		title.MediaType = *input.MediaType
	}
	if input.IdentifierType != nil {
		if !input.IdentifierType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier type")
		}
		title.IdentifierType = *input.IdentifierType
	}
	if input.Authors != nil {
		title.Authors = input.Authors
	}
	if input.Publisher != nil {
		title.Publisher = input.Publisher
	}
	if input.PublishedAt != nil {
		title.PublishedAt = input.PublishedAt
	}
	if input.Language != nil {
		title.Language = input.Language
	}
	if input.CoverURL != nil {
		title.CoverURL = input.CoverURL
	}
	if input.IdentifierValue != nil {
		title.IdentifierValue = input.IdentifierValue
	}
	if input.IsActive != nil {
		title.IsActive = *input.IsActive
	}

	if err := s.repo.SaveTitle(ctx, title); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save title")
	}
	dto := ToTitleDTO(*title)
	return &dto, nil
}
