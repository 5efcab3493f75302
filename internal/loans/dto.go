package loans

import (
	"time"

	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/pkg/db/models"
	"github.com/schulbib/schulbib-backend/pkg/enums"
)

// RequestLoanInput carries the fields for a new loan request. DueAt defaults
// to the configured lending period when nil.
type RequestLoanInput struct {
	CopyID uuid.UUID
	UserID uuid.UUID
	DueAt  *time.Time
	Note   *string
}

// ListLoansFilter narrows a loan listing. Nil fields match everything.
type ListLoansFilter struct {
	UserID  *uuid.UUID
	Status  *enums.LoanStatus
	Overdue bool

	// overdueBefore is the due-date cutoff the repository compares against.
	// The service fills it from its clock when Overdue is set.
	overdueBefore *time.Time
}

// LoanDTO is the API projection of a room loan.
type LoanDTO struct {
	ID         uuid.UUID        `json:"id"`
	CopyID     uuid.UUID        `json:"copy_id"`
	UserID     uuid.UUID        `json:"user_id"`
	Status     enums.LoanStatus `json:"status"`
	DueAt      *time.Time       `json:"due_at,omitempty"`
	ApprovedAt *time.Time       `json:"approved_at,omitempty"`
	ReturnedAt *time.Time       `json:"returned_at,omitempty"`
	Note       *string          `json:"note,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ListLoansResult is one cursor page of loans.
type ListLoansResult struct {
	Loans      []LoanDTO `json:"loans"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// ToLoanDTO maps a loan row to its projection.
func ToLoanDTO(loan models.RoomLoan) LoanDTO {
	return LoanDTO{
		ID:         loan.ID,
		CopyID:     loan.CopyID,
		UserID:     loan.UserID,
		Status:     loan.Status,
		DueAt:      loan.DueAt,
		ApprovedAt: loan.ApprovedAt,
		ReturnedAt: loan.ReturnedAt,
		Note:       loan.Note,
		CreatedAt:  loan.CreatedAt,
		UpdatedAt:  loan.UpdatedAt,
	}
}
