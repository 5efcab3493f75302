package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/api/responses"
	"github.com/schulbib/schulbib-backend/api/validators"
	"github.com/schulbib/schulbib-backend/internal/catalog"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	pkgerrors "github.com/schulbib/schulbib-backend/pkg/errors"
	"github.com/schulbib/schulbib-backend/pkg/logger"
	"github.com/schulbib/schulbib-backend/pkg/pagination"
)

type createTitleRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=500"`
	CategoryName    string  `json:"category_name" validate:"required,min=1,max=200"`
	SubcategoryName string  `json:"subcategory_name,omitempty" validate:"omitempty,max=200"`
	MediaType       string  `json:"media_type" validate:"required"`
	Authors         *string `json:"authors,omitempty"`
	Publisher       *string `json:"publisher,omitempty"`
	PublishedAt     *string `json:"published_at,omitempty"`
	Language        *string `json:"language,omitempty"`
	CoverURL        *string `json:"cover_url,omitempty" validate:"omitempty,url"`
	IdentifierType  string  `json:"identifier_type,omitempty"`
	IdentifierValue *string `json:"identifier_value,omitempty"`
	HomeLocation    string  `json:"home_location,omitempty" validate:"omitempty,max=200"`
}

func (req createTitleRequest) toInput() (catalog.CreateTitleInput, error) {
	mediaType, err := enums.ParseMediaType(req.MediaType)
	if err != nil {
		return catalog.CreateTitleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media type")
	}
	identifierType := enums.IdentifierTypeNone
	if strings.TrimSpace(req.IdentifierType) != "" {
		identifierType, err = enums.ParseIdentifierType(req.IdentifierType)
		if err != nil {
			return catalog.CreateTitleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier type")
		}
	}
	return catalog.CreateTitleInput{
		Name:            req.Name,
		CategoryName:    req.CategoryName,
		SubcategoryName: req.SubcategoryName,
		MediaType:       mediaType,
		Authors:         req.Authors,
		Publisher:       req.Publisher,
		PublishedAt:     req.PublishedAt,
		Language:        req.Language,
		CoverURL:        req.CoverURL,
		IdentifierType:  identifierType,
		IdentifierValue: req.IdentifierValue,
		HomeLocation:    req.HomeLocation,
	}, nil
}

// CreateTitle registers a new catalog entry with its first copy.
func CreateTitle(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createTitleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateTitle(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// GetTitle returns one title with its copies.
func GetTitle(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "titleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid title id"))
			return
		}

		title, err := svc.GetTitle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, title)
	}
}

// ListTitles returns one cursor page of titles.
func ListTitles(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}
		search := validators.SanitizeString(r.URL.Query().Get("q"), 200)

		page, err := svc.ListTitles(r.Context(), params, search)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

type updateTitleRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=500"`
	Authors         *string `json:"authors,omitempty"`
	Publisher       *string `json:"publisher,omitempty"`
	PublishedAt     *string `json:"published_at,omitempty"`
	Language        *string `json:"language,omitempty"`
	CoverURL        *string `json:"cover_url,omitempty" validate:"omitempty,url"`
	MediaType       *string `json:"media_type,omitempty"`
	IdentifierType  *string `json:"identifier_type,omitempty"`
	IdentifierValue *string `json:"identifier_value,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

func (req updateTitleRequest) toInput() (catalog.UpdateTitleInput, error) {
	input := catalog.UpdateTitleInput{
		Name:            req.Name,
		Authors:         req.Authors,
		Publisher:       req.Publisher,
		PublishedAt:     req.PublishedAt,
		Language:        req.Language,
		CoverURL:        req.CoverURL,
		IdentifierValue: req.IdentifierValue,
		IsActive:        req.IsActive,
	}
	if req.MediaType != nil {
		mediaType, err := enums.ParseMediaType(*req.MediaType)
		if err != nil {
			return catalog.UpdateTitleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media type")
		}
		input.MediaType = &mediaType
	}
	if req.IdentifierType != nil {
		identifierType, err := enums.ParseIdentifierType(*req.IdentifierType)
		if err != nil {
			return catalog.UpdateTitleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier type")
		}
		input.IdentifierType = &identifierType
	}
	return input, nil
}

// UpdateTitle patches title metadata. The short code never changes.
func UpdateTitle(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "titleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid title id"))
			return
		}

		var payload updateTitleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateTitle(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
