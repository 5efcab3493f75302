package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "sb:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func idempotentHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	})
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(idempotentHandler(&calls))

	body := `{"name":"Atlas"}`
	first := httptest.NewRequest(http.MethodPost, "/api/v1/titles", strings.NewReader(body))
	first.Header.Set("Idempotency-Key", "abc")
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, first)
	require.Equal(t, http.StatusCreated, w1.Code)
	require.Equal(t, 1, calls)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/titles", strings.NewReader(body))
	second.Header.Set("Idempotency-Key", "abc")
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, second)

	assert.Equal(t, http.StatusCreated, w2.Code)
	assert.Equal(t, 1, calls, "handler must not run again on replay")
	assert.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(idempotentHandler(&calls))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(`{"copy_id":"a"}`))
	first.Header.Set("Idempotency-Key", "abc")
	handler.ServeHTTP(httptest.NewRecorder(), first)
	require.Equal(t, 1, calls)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(`{"copy_id":"b"}`))
	second.Header.Set("Idempotency-Key", "abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, second)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyRequiresHeaderOnGuardedRoutes(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(idempotentHandler(&calls))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/titles", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, calls)
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(idempotentHandler(&calls))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, store.sets)
}

func TestIdempotencyGuardsCheckoutPaths(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(idempotentHandler(&calls))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans/6a2f5fd8-0000-0000-0000-000000000000/checkout", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// guarded route without a key is rejected
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, calls)
}
