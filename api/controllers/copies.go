package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/api/responses"
	"github.com/schulbib/schulbib-backend/api/validators"
	"github.com/schulbib/schulbib-backend/internal/copies"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	pkgerrors "github.com/schulbib/schulbib-backend/pkg/errors"
	"github.com/schulbib/schulbib-backend/pkg/logger"
)

type addCopyRequest struct {
	HomeLocation string  `json:"home_location,omitempty" validate:"omitempty,max=200"`
	Note         *string `json:"note,omitempty" validate:"omitempty,max=2000"`
	PresenceOnly bool    `json:"presence_only,omitempty"`
}

// AddCopy appends another physical copy to an existing title.
func AddCopy(svc copies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "copy service unavailable"))
			return
		}

		titleID, err := uuid.Parse(chi.URLParam(r, "titleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid title id"))
			return
		}

		var payload addCopyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.AddCopy(r.Context(), copies.AddCopyInput{
			TitleID:      titleID,
			HomeLocation: payload.HomeLocation,
			Note:         payload.Note,
			PresenceOnly: payload.PresenceOnly,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListCopies returns all copies of a title.
func ListCopies(svc copies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "copy service unavailable"))
			return
		}

		titleID, err := uuid.Parse(chi.URLParam(r, "titleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid title id"))
			return
		}

		rows, err := svc.ListByTitle(r.Context(), titleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GetCopy returns one copy.
func GetCopy(svc copies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "copy service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "copyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid copy id"))
			return
		}

		copy, err := svc.GetCopy(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, copy)
	}
}

type patchCopyRequest struct {
	HomeLocation *string `json:"home_location,omitempty" validate:"omitempty,min=1,max=200"`
	Note         *string `json:"note,omitempty" validate:"omitempty,max=2000"`
	PresenceOnly *bool   `json:"presence_only,omitempty"`
	State        *string `json:"state,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// PatchCopy adjusts copy attributes and administrative state.
func PatchCopy(svc copies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "copy service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "copyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid copy id"))
			return
		}

		var payload patchCopyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := copies.PatchCopyInput{
			HomeLocation: payload.HomeLocation,
			Note:         payload.Note,
			PresenceOnly: payload.PresenceOnly,
			IsActive:     payload.IsActive,
		}
		if payload.State != nil {
			state, err := enums.ParseCopyState(*payload.State)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid copy state"))
				return
			}
			input.State = &state
		}

		updated, err := svc.PatchCopy(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
