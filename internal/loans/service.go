package loans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schulbib/schulbib-backend/internal/copies"
	"github.com/schulbib/schulbib-backend/pkg/config"
	"github.com/schulbib/schulbib-backend/pkg/db"
	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	pkgerrors "github.com/schulbib/schulbib-backend/pkg/errors"
	"github.com/schulbib/schulbib-backend/pkg/metrics"
	"github.com/schulbib/schulbib-backend/pkg/pagination"
)

type loanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.RoomLoan, error)
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.RoomLoan, error)
	FindCopyByID(ctx context.Context, id uuid.UUID) (*models.Copy, error)
	FindCopyByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Copy, error)
	Create(ctx context.Context, loan *models.RoomLoan) error
	Save(ctx context.Context, loan *models.RoomLoan) error
	SaveWithTx(tx *gorm.DB, loan *models.RoomLoan) error
	List(ctx context.Context, cursor *pagination.Cursor, limit int, filter ListLoansFilter) ([]models.RoomLoan, error)
}

// Service exposes the room-loan workflow.
type Service interface {
	Request(ctx context.Context, input RequestLoanInput) (*LoanDTO, error)
	Approve(ctx context.Context, loanID uuid.UUID) (*LoanDTO, error)
	Checkout(ctx context.Context, loanID uuid.UUID) (*LoanDTO, error)
	Return(ctx context.Context, loanID uuid.UUID) (*LoanDTO, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*LoanDTO, error)
	ListLoans(ctx context.Context, params pagination.Params, filter ListLoansFilter) (*ListLoansResult, error)
}

type service struct {
	client   *db.Client
	repo     loanRepository
	loansCfg config.LoansConfig
	metrics  *metrics.CirculationMetrics
	now      func() time.Time
}

// NewService builds the loan service.
func NewService(client *db.Client, repo loanRepository, loansCfg config.LoansConfig, m *metrics.CirculationMetrics) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("loan repository required")
	}
	return &service{
		client:   client,
		repo:     repo,
		loansCfg: loansCfg,
		metrics:  m,
		now:      time.Now,
	}, nil
}

// defaultDueAt places the due date one lending period ahead, clamped to
// 23:59 local time so a loan never expires in the middle of a school day.
func (s *service) defaultDueAt() time.Time {
	due := s.now().Add(s.loansCfg.Period())
	return time.Date(due.Year(), due.Month(), due.Day(), 23, 59, 0, 0, due.Location())
}

// Request records a lending request for a copy. It validates availability but
// does not reserve the copy; the reservation happens at checkout.
func (s *service) Request(ctx context.Context, input RequestLoanInput) (*LoanDTO, error) {
	if input.CopyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "copy id is required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	copy, err := s.repo.FindCopyByID(ctx, input.CopyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "copy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load copy")
	}
	if !copy.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "copy not found")
	}
	if copy.PresenceOnly {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "copy is presence-only and cannot be lent")
	}
	if copy.State != enums.CopyStateInLibrary {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "copy is not available for lending")
	}

	dueAt := s.defaultDueAt()
	if input.DueAt != nil {
		if input.DueAt.Before(s.now()) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date must be in the future")
		}
		dueAt = *input.DueAt
	}

	loan := models.RoomLoan{
		ID:     uuid.New(),
		CopyID: input.CopyID,
		UserID: input.UserID,
		Status: enums.LoanStatusRequested,
		DueAt:  &dueAt,
		Note:   input.Note,
	}
	if note := loan.Note; note != nil && strings.TrimSpace(*note) == "" {
		loan.Note = nil
	}
	if err := s.repo.Create(ctx, &loan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create loan")
	}

	s.metrics.IncLoanTransition(string(enums.LoanStatusRequested))
	dto := ToLoanDTO(loan)
	return &dto, nil
}

// Approve moves a requested loan to approved. Approval is optional; checkout
// accepts loans straight from requested as well.
func (s *service) Approve(ctx context.Context, loanID uuid.UUID) (*LoanDTO, error) {
	loan, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loan")
	}

	if loan.Status == enums.LoanStatusApproved {
		dto := ToLoanDTO(*loan)
		return &dto, nil
	}
	if loan.Status != enums.LoanStatusRequested {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "loan is not awaiting approval")
	}

	now := s.now()
	loan.Status = enums.LoanStatusApproved
	loan.ApprovedAt = &now
	if err := s.repo.Save(ctx, loan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save loan")
	}

	s.metrics.IncLoanTransition(string(enums.LoanStatusApproved))
	dto := ToLoanDTO(*loan)
	return &dto, nil
}

// Checkout hands the copy out. The loan read, the copy reservation and the
// loan write run in one transaction; losing the reservation race fails the
// whole operation and leaves the loan untouched. Already-out loans succeed
// without changes.
func (s *service) Checkout(ctx context.Context, loanID uuid.UUID) (*LoanDTO, error) {
	var result models.RoomLoan
	transitioned := false
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		loan, err := s.repo.FindByIDWithTx(tx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "loan not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loan")
		}

		if loan.Status == enums.LoanStatusOut {
			result = *loan
			return nil
		}
		if loan.Status != enums.LoanStatusRequested && loan.Status != enums.LoanStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "loan cannot be checked out from its current status")
		}

		copy, err := s.repo.FindCopyByIDWithTx(tx, loan.CopyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "copy not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load copy")
		}
		if !copy.IsActive || copy.PresenceOnly {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "copy cannot be lent")
		}

		reserved, err := copies.TryReserve(ctx, tx, loan.CopyID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve copy")
		}
		if !reserved {
			s.metrics.IncCheckoutConflict()
			return pkgerrors.New(pkgerrors.CodeConflict, "copy is no longer available")
		}

		now := s.now()
		loan.Status = enums.LoanStatusOut
		if loan.ApprovedAt == nil {
			loan.ApprovedAt = &now
		}
		if err := s.repo.SaveWithTx(tx, loan); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save loan")
		}
		result = *loan
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.metrics.IncLoanTransition(string(enums.LoanStatusOut))
	}
	dto := ToLoanDTO(result)
	return &dto, nil
}

// Return closes the loan. The loan status is the authoritative record; the
// copy release is attempted defensively and its failure tolerated, since the
// copy may have been administratively reset while out. Already-returned loans
// succeed without changes.
func (s *service) Return(ctx context.Context, loanID uuid.UUID) (*LoanDTO, error) {
	var result models.RoomLoan
	transitioned := false
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		loan, err := s.repo.FindByIDWithTx(tx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "loan not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loan")
		}

		if loan.Status == enums.LoanStatusReturned {
			result = *loan
			return nil
		}
		if loan.Status != enums.LoanStatusOut {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "loan is not out")
		}

		now := s.now()
		loan.Status = enums.LoanStatusReturned
		loan.ReturnedAt = &now
		if err := s.repo.SaveWithTx(tx, loan); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save loan")
		}

		if _, err := copies.TryRelease(ctx, tx, loan.CopyID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release copy")
		}
		result = *loan
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.metrics.IncLoanTransition(string(enums.LoanStatusReturned))
	}
	dto := ToLoanDTO(result)
	return &dto, nil
}

// GetLoan loads one loan.
func (s *service) GetLoan(ctx context.Context, id uuid.UUID) (*LoanDTO, error) {
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loan")
	}
	dto := ToLoanDTO(*loan)
	return &dto, nil
}

// ListLoans returns one cursor page of loans, newest first.
func (s *service) ListLoans(ctx context.Context, params pagination.Params, filter ListLoansFilter) (*ListLoansResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid loan status")
	}
	if filter.Overdue {
		cutoff := s.now()
		filter.overdueBefore = &cutoff
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, cursor, pagination.LimitWithBuffer(params.Limit), filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list loans")
	}

	result := &ListLoansResult{Loans: make([]LoanDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		result.Loans = append(result.Loans, ToLoanDTO(row))
	}
	if hasMore {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}
