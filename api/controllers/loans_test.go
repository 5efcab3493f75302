package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/schulbib/schulbib-backend/api/middleware"
	"github.com/schulbib/schulbib-backend/internal/loans"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	"github.com/schulbib/schulbib-backend/pkg/logger"
	"github.com/schulbib/schulbib-backend/pkg/pagination"
)

type testLoansService struct {
	requestFn func(ctx context.Context, input loans.RequestLoanInput) (*loans.LoanDTO, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*loans.LoanDTO, error)
	listFn    func(ctx context.Context, params pagination.Params, filter loans.ListLoansFilter) (*loans.ListLoansResult, error)
}

func (s *testLoansService) Request(ctx context.Context, input loans.RequestLoanInput) (*loans.LoanDTO, error) {
	if s.requestFn != nil {
		return s.requestFn(ctx, input)
	}
	return &loans.LoanDTO{}, nil
}

func (s *testLoansService) Approve(ctx context.Context, loanID uuid.UUID) (*loans.LoanDTO, error) {
	return &loans.LoanDTO{ID: loanID}, nil
}

func (s *testLoansService) Checkout(ctx context.Context, loanID uuid.UUID) (*loans.LoanDTO, error) {
	return &loans.LoanDTO{ID: loanID}, nil
}

func (s *testLoansService) Return(ctx context.Context, loanID uuid.UUID) (*loans.LoanDTO, error) {
	return &loans.LoanDTO{ID: loanID}, nil
}

func (s *testLoansService) GetLoan(ctx context.Context, id uuid.UUID) (*loans.LoanDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &loans.LoanDTO{ID: id}, nil
}

func (s *testLoansService) ListLoans(ctx context.Context, params pagination.Params, filter loans.ListLoansFilter) (*loans.ListLoansResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params, filter)
	}
	return &loans.ListLoansResult{}, nil
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func asMember(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleMember))
	return req.WithContext(ctx)
}

func asLibrarian(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleLibrarian))
	return req.WithContext(ctx)
}

func TestRequestLoanDefaultsToActor(t *testing.T) {
	actor := uuid.New()
	copyID := uuid.New()
	var got loans.RequestLoanInput
	svc := &testLoansService{
		requestFn: func(ctx context.Context, input loans.RequestLoanInput) (*loans.LoanDTO, error) {
			got = input
			return &loans.LoanDTO{ID: uuid.New(), CopyID: input.CopyID, UserID: input.UserID}, nil
		},
	}

	body := `{"copy_id":"` + copyID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(body))
	req = asMember(req, actor)
	resp := httptest.NewRecorder()
	RequestLoan(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.UserID != actor {
		t.Fatalf("expected loan for actor %s, got %s", actor, got.UserID)
	}
	if got.CopyID != copyID {
		t.Fatalf("unexpected copy %s", got.CopyID)
	}
}

func TestRequestLoanForOtherUserForbiddenForMembers(t *testing.T) {
	called := false
	svc := &testLoansService{
		requestFn: func(ctx context.Context, input loans.RequestLoanInput) (*loans.LoanDTO, error) {
			called = true
			return &loans.LoanDTO{}, nil
		},
	}

	body := `{"copy_id":"` + uuid.NewString() + `","user_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(body))
	req = asMember(req, uuid.New())
	resp := httptest.NewRecorder()
	RequestLoan(svc, testLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if called {
		t.Fatal("service must not be called")
	}
}

func TestRequestLoanStaffOnBehalf(t *testing.T) {
	borrower := uuid.New()
	var got loans.RequestLoanInput
	svc := &testLoansService{
		requestFn: func(ctx context.Context, input loans.RequestLoanInput) (*loans.LoanDTO, error) {
			got = input
			return &loans.LoanDTO{}, nil
		},
	}

	body := `{"copy_id":"` + uuid.NewString() + `","user_id":"` + borrower.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(body))
	req = asLibrarian(req, uuid.New())
	resp := httptest.NewRecorder()
	RequestLoan(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.UserID != borrower {
		t.Fatalf("expected loan for %s, got %s", borrower, got.UserID)
	}
}

func TestRequestLoanRejectsMissingCopyID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(`{}`))
	req = asMember(req, uuid.New())
	resp := httptest.NewRecorder()
	RequestLoan(&testLoansService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetLoanHidesForeignLoansFromMembers(t *testing.T) {
	loanID := uuid.New()
	svc := &testLoansService{
		getFn: func(ctx context.Context, id uuid.UUID) (*loans.LoanDTO, error) {
			return &loans.LoanDTO{ID: id, UserID: uuid.New()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans/"+loanID.String(), nil)
	req = asMember(req, uuid.New())
	req = addRouteParam(req, "loanId", loanID.String())
	resp := httptest.NewRecorder()
	GetLoan(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestGetLoanStaffSeesAnyLoan(t *testing.T) {
	loanID := uuid.New()
	svc := &testLoansService{
		getFn: func(ctx context.Context, id uuid.UUID) (*loans.LoanDTO, error) {
			return &loans.LoanDTO{ID: id, UserID: uuid.New()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans/"+loanID.String(), nil)
	req = asLibrarian(req, uuid.New())
	req = addRouteParam(req, "loanId", loanID.String())
	resp := httptest.NewRecorder()
	GetLoan(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data loans.LoanDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.ID != loanID {
		t.Fatalf("unexpected loan %s", envelope.Data.ID)
	}
}

func TestListLoansScopesMembersToOwnLoans(t *testing.T) {
	actor := uuid.New()
	var got loans.ListLoansFilter
	svc := &testLoansService{
		listFn: func(ctx context.Context, params pagination.Params, filter loans.ListLoansFilter) (*loans.ListLoansResult, error) {
			got = filter
			return &loans.ListLoansResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans?user_id="+uuid.NewString(), nil)
	req = asMember(req, actor)
	resp := httptest.NewRecorder()
	ListLoans(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.UserID == nil || *got.UserID != actor {
		t.Fatalf("expected filter scoped to %s, got %v", actor, got.UserID)
	}
}

func TestListLoansStaffFilterByUserAndStatus(t *testing.T) {
	borrower := uuid.New()
	var got loans.ListLoansFilter
	svc := &testLoansService{
		listFn: func(ctx context.Context, params pagination.Params, filter loans.ListLoansFilter) (*loans.ListLoansResult, error) {
			got = filter
			return &loans.ListLoansResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans?user_id="+borrower.String()+"&status=out", nil)
	req = asLibrarian(req, uuid.New())
	resp := httptest.NewRecorder()
	ListLoans(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.UserID == nil || *got.UserID != borrower {
		t.Fatalf("expected filter for %s, got %v", borrower, got.UserID)
	}
	if got.Status == nil || *got.Status != enums.LoanStatusOut {
		t.Fatalf("expected status filter out, got %v", got.Status)
	}
}

func TestListLoansMineAndOverdueFlags(t *testing.T) {
	actor := uuid.New()
	var got loans.ListLoansFilter
	svc := &testLoansService{
		listFn: func(ctx context.Context, params pagination.Params, filter loans.ListLoansFilter) (*loans.ListLoansResult, error) {
			got = filter
			return &loans.ListLoansResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans?mine=1&overdue=1", nil)
	req = asLibrarian(req, actor)
	resp := httptest.NewRecorder()
	ListLoans(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.UserID == nil || *got.UserID != actor {
		t.Fatalf("expected mine=1 to scope to %s, got %v", actor, got.UserID)
	}
	if !got.Overdue {
		t.Fatal("expected overdue filter set")
	}
}

func TestListLoansRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans?status=borrowed", nil)
	req = asLibrarian(req, uuid.New())
	resp := httptest.NewRecorder()
	ListLoans(&testLoansService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
