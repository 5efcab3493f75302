package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/internal/catalog"
	"github.com/schulbib/schulbib-backend/internal/copies"
	"github.com/schulbib/schulbib-backend/internal/loans"
	pkgauth "github.com/schulbib/schulbib-backend/pkg/auth"
	"github.com/schulbib/schulbib-backend/pkg/config"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	"github.com/schulbib/schulbib-backend/pkg/logger"
	"github.com/schulbib/schulbib-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateTitle(ctx context.Context, input catalog.CreateTitleInput) (*catalog.TitleDTO, error) {
	return &catalog.TitleDTO{ID: uuid.New(), Name: input.Name, ShortCode: "GES-ALL-0001"}, nil
}

func (stubCatalogService) GetTitle(ctx context.Context, id uuid.UUID) (*catalog.TitleDTO, error) {
	return &catalog.TitleDTO{ID: id}, nil
}

func (stubCatalogService) ListTitles(ctx context.Context, params pagination.Params, search string) (*catalog.ListTitlesResult, error) {
	return &catalog.ListTitlesResult{}, nil
}

func (stubCatalogService) UpdateTitle(ctx context.Context, id uuid.UUID, input catalog.UpdateTitleInput) (*catalog.TitleDTO, error) {
	return &catalog.TitleDTO{ID: id}, nil
}

type stubCopiesService struct{}

func (stubCopiesService) AddCopy(ctx context.Context, input copies.AddCopyInput) (*copies.CopyDTO, error) {
	return &copies.CopyDTO{ID: uuid.New(), TitleID: input.TitleID}, nil
}

func (stubCopiesService) GetCopy(ctx context.Context, id uuid.UUID) (*copies.CopyDTO, error) {
	return &copies.CopyDTO{ID: id}, nil
}

func (stubCopiesService) ListByTitle(ctx context.Context, titleID uuid.UUID) ([]copies.CopyDTO, error) {
	return nil, nil
}

func (stubCopiesService) PatchCopy(ctx context.Context, id uuid.UUID, input copies.PatchCopyInput) (*copies.CopyDTO, error) {
	return &copies.CopyDTO{ID: id}, nil
}

type stubLoansService struct{}

func (stubLoansService) Request(ctx context.Context, input loans.RequestLoanInput) (*loans.LoanDTO, error) {
	return &loans.LoanDTO{ID: uuid.New(), CopyID: input.CopyID, UserID: input.UserID}, nil
}

func (stubLoansService) Approve(ctx context.Context, loanID uuid.UUID) (*loans.LoanDTO, error) {
	return &loans.LoanDTO{ID: loanID}, nil
}

func (stubLoansService) Checkout(ctx context.Context, loanID uuid.UUID) (*loans.LoanDTO, error) {
	return &loans.LoanDTO{ID: loanID}, nil
}

func (stubLoansService) Return(ctx context.Context, loanID uuid.UUID) (*loans.LoanDTO, error) {
	return &loans.LoanDTO{ID: loanID}, nil
}

func (stubLoansService) GetLoan(ctx context.Context, id uuid.UUID) (*loans.LoanDTO, error) {
	return &loans.LoanDTO{ID: id}, nil
}

func (stubLoansService) ListLoans(ctx context.Context, params pagination.Params, filter loans.ListLoansFilter) (*loans.ListLoansResult, error) {
	return &loans.ListLoansResult{}, nil
}

var routerTestJWT = config.JWTConfig{Secret: "router-test-secret", Issuer: "schulbib-test"}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:  &config.Config{JWT: routerTestJWT},
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:      stubPinger{},
		Catalog: stubCatalogService{},
		Copies:  stubCopiesService{},
		Loans:   stubLoansService{},
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(routerTestJWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveNeedsNoAuth(t *testing.T) {
	router := newTestRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestHealthReadyReportsChecks(t *testing.T) {
	router := newTestRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "database") {
		t.Fatalf("missing database check: %s", resp.Body.String())
	}
}

func TestAPIRequiresToken(t *testing.T) {
	router := newTestRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMembersCanBrowseTitles(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMembersCannotCreateTitles(t *testing.T) {
	router := newTestRouter(t)
	body := `{"name":"Geschichte Europas","category_name":"Geschichte","media_type":"book"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/titles", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLibrariansCanCreateTitles(t *testing.T) {
	router := newTestRouter(t)
	body := `{"name":"Geschichte Europas","category_name":"Geschichte","media_type":"book"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/titles", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleLibrarian))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLoanActionsAreStaffOnly(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans/"+uuid.NewString()+"/checkout", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d: %s", resp.Code, resp.Body.String())
	}
}
