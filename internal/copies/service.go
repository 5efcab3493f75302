package copies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schulbib/schulbib-backend/internal/catalog"
	"github.com/schulbib/schulbib-backend/pkg/config"
	"github.com/schulbib/schulbib-backend/pkg/db"
	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	pkgerrors "github.com/schulbib/schulbib-backend/pkg/errors"
	"github.com/schulbib/schulbib-backend/pkg/metrics"
	"github.com/schulbib/schulbib-backend/pkg/retry"
)

// copyCodeAttempts bounds the optimistic allocation loop. Losing the unique
// race three times in a row means unusual contention; the caller gets a
// retryable failure instead of an unbounded loop.
const copyCodeAttempts = 3

type copyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Copy, error)
	FindTitleByID(ctx context.Context, id uuid.UUID) (*models.Title, error)
	MaxCopyCode(tx *gorm.DB, titleID uuid.UUID) (string, error)
	Create(tx *gorm.DB, copy *models.Copy) error
	Save(ctx context.Context, copy *models.Copy) error
	ListByTitle(ctx context.Context, titleID uuid.UUID) ([]models.Copy, error)
}

// Service exposes copy operations.
type Service interface {
	AddCopy(ctx context.Context, input AddCopyInput) (*CopyDTO, error)
	GetCopy(ctx context.Context, id uuid.UUID) (*CopyDTO, error)
	ListByTitle(ctx context.Context, titleID uuid.UUID) ([]CopyDTO, error)
	PatchCopy(ctx context.Context, id uuid.UUID, input PatchCopyInput) (*CopyDTO, error)
}

type service struct {
	client   *db.Client
	repo     copyRepository
	loansCfg config.LoansConfig
	metrics  *metrics.CirculationMetrics
}

// NewService builds the copy service.
func NewService(client *db.Client, repo copyRepository, loansCfg config.LoansConfig, m *metrics.CirculationMetrics) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("copy repository required")
	}
	return &service{
		client:   client,
		repo:     repo,
		loansCfg: loansCfg,
		metrics:  m,
	}, nil
}

// AddCopy allocates the next copy code for an existing title. The code comes
// from re-scanning the highest committed code, so a lost unique race is
// repaired by simply scanning again; the loop is bounded at three attempts.
func (s *service) AddCopy(ctx context.Context, input AddCopyInput) (*CopyDTO, error) {
	title, err := s.repo.FindTitleByID(ctx, input.TitleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load title")
	}
	if title == nil || !title.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "title not found")
	}
	if strings.TrimSpace(input.HomeLocation) == "" {
		input.HomeLocation = s.loansCfg.DefaultLocation
	}

	isCodeConflict := func(err error) bool {
		return db.IsUniqueViolation(err, "uniq_copies_copy_code")
	}

	var created models.Copy
	attempts := 0
	err = retry.Do(ctx, copyCodeAttempts, isCodeConflict, func(ctx context.Context) error {
		attempts++
		if attempts > 1 {
			s.metrics.IncCopyCodeRetry()
		}
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			next := 1
			maxCode, err := s.repo.MaxCopyCode(tx, input.TitleID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scan copy codes")
			}
			if maxCode != "" {
				parsed, err := catalog.ParseCopyNumber(maxCode)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse copy code")
				}
				next = parsed + 1
			}

			created = models.Copy{
				ID:           uuid.New(),
				TitleID:      input.TitleID,
				CopyCode:     catalog.FormatCopyCode(title.ShortCode, next),
				State:        enums.CopyStateInLibrary,
				HomeLocation: input.HomeLocation,
				PresenceOnly: input.PresenceOnly,
				Note:         input.Note,
				IsActive:     true,
			}
			return s.repo.Create(tx, &created)
		})
	})
	if err != nil {
		if isCodeConflict(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeResourceExhausted, err, "copy code allocation kept losing the race")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create copy")
	}

	dto := ToCopyDTO(created)
	return &dto, nil
}

// GetCopy loads one copy.
func (s *service) GetCopy(ctx context.Context, id uuid.UUID) (*CopyDTO, error) {
	copy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "copy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load copy")
	}
	dto := ToCopyDTO(*copy)
	return &dto, nil
}

// ListByTitle returns all copies of a title.
func (s *service) ListByTitle(ctx context.Context, titleID uuid.UUID) ([]CopyDTO, error) {
	rows, err := s.repo.ListByTitle(ctx, titleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list copies")
	}
	dtos := make([]CopyDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ToCopyDTO(row))
	}
	return dtos, nil
}

// PatchCopy applies the provided fields. The state field accepts only the
// administrative values; the on_loan transition stays with the lending flow.
func (s *service) PatchCopy(ctx context.Context, id uuid.UUID, input PatchCopyInput) (*CopyDTO, error) {
	copy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "copy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load copy")
	}

	if input.State != nil {
		if !input.State.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid copy state")
		}
		if *input.State == enums.CopyStateOnLoan {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "on_loan is set by checkout, not by patch")
		}
		copy.State = *input.State
	}
	if input.HomeLocation != nil {
		trimmed := strings.TrimSpace(*input.HomeLocation)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "home location cannot be empty")
		}
		copy.HomeLocation = trimmed
	}
	if input.Note != nil {
		copy.Note = input.Note
	}
	if input.PresenceOnly != nil {
		copy.PresenceOnly = *input.PresenceOnly
	}
	if input.IsActive != nil {
		copy.IsActive = *input.IsActive
	}

	if err := s.repo.Save(ctx, copy); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save copy")
	}
	dto := ToCopyDTO(*copy)
	return &dto, nil
}
