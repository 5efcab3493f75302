package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/api/middleware"
	"github.com/schulbib/schulbib-backend/api/responses"
	"github.com/schulbib/schulbib-backend/api/validators"
	"github.com/schulbib/schulbib-backend/internal/loans"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	pkgerrors "github.com/schulbib/schulbib-backend/pkg/errors"
	"github.com/schulbib/schulbib-backend/pkg/logger"
	"github.com/schulbib/schulbib-backend/pkg/pagination"
)

type requestLoanRequest struct {
	CopyID string     `json:"copy_id" validate:"required,uuid4"`
	UserID *string    `json:"user_id,omitempty" validate:"omitempty,uuid4"`
	DueAt  *time.Time `json:"due_at,omitempty"`
	Note   *string    `json:"note,omitempty" validate:"omitempty,max=2000"`
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, nil
}

func actorIsStaff(r *http.Request) bool {
	role := middleware.RoleFromContext(r.Context())
	return role == string(enums.UserRoleLibrarian) || role == string(enums.UserRoleAdmin)
}

// RequestLoan files a lending request. Members always request for themselves;
// staff may file on behalf of another user.
func RequestLoan(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loan service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload requestLoanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		copyID, err := uuid.Parse(payload.CopyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid copy id"))
			return
		}

		userID := actor
		if payload.UserID != nil {
			requested, err := uuid.Parse(*payload.UserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
				return
			}
			if requested != actor && !actorIsStaff(r) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cannot request a loan for another user"))
				return
			}
			userID = requested
		}

		loan, err := svc.Request(r.Context(), loans.RequestLoanInput{
			CopyID: copyID,
			UserID: userID,
			DueAt:  payload.DueAt,
			Note:   payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, loan)
	}
}

func loanIDFromRequest(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "loanId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid loan id")
	}
	return id, nil
}

// ApproveLoan marks a requested loan as approved.
func ApproveLoan(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loan service unavailable"))
			return
		}

		id, err := loanIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		loan, err := svc.Approve(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loan)
	}
}

// CheckoutLoan hands the copy out to the borrower.
func CheckoutLoan(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loan service unavailable"))
			return
		}

		id, err := loanIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		loan, err := svc.Checkout(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loan)
	}
}

// ReturnLoan records the copy coming back.
func ReturnLoan(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loan service unavailable"))
			return
		}

		id, err := loanIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		loan, err := svc.Return(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loan)
	}
}

// GetLoan returns one loan. Members only see their own.
func GetLoan(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loan service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := loanIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		loan, err := svc.GetLoan(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if loan.UserID != actor && !actorIsStaff(r) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "loan not found"))
			return
		}
		responses.WriteSuccess(w, loan)
	}
}

// ListLoans returns one cursor page of loans. Members are always scoped to
// their own loans; staff may filter by user and status.
func ListLoans(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loan service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := loans.ListLoansFilter{}
		if actorIsStaff(r) {
			if raw := r.URL.Query().Get("user_id"); raw != "" {
				userID, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
					return
				}
				filter.UserID = &userID
			}
			if r.URL.Query().Get("mine") == "1" {
				filter.UserID = &actor
			}
		} else {
			filter.UserID = &actor
		}
		if r.URL.Query().Get("overdue") == "1" {
			filter.Overdue = true
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseLoanStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid loan status"))
				return
			}
			filter.Status = &status
		}

		page, err := svc.ListLoans(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
