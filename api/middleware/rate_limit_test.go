package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fixedWindowStore struct {
	counts map[string]int64
}

func newFixedWindowStore() *fixedWindowStore {
	return &fixedWindowStore{counts: map[string]int64{}}
}

func (f *fixedWindowStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.counts[scope]++
	count := f.counts[scope]
	return count <= limit, count, nil
}

func rateLimitedHandler(t *testing.T, policy WriteRateLimitPolicy, store *fixedWindowStore) http.Handler {
	t.Helper()
	return WriteRateLimit(policy, store, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
}

func TestWriteRateLimitBlocksTenantOverLimit(t *testing.T) {
	store := newFixedWindowStore()
	policy := NewWriteRateLimitPolicy("writes", time.Minute, 2, 0)
	handler := rateLimitedHandler(t, policy, store)
	tenantID := uuid.New()

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/items", nil)
		req = req.WithContext(WithTenantID(req.Context(), tenantID))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do(); w.Code != http.StatusCreated {
			t.Fatalf("request %d: status %d", i+1, w.Code)
		}
	}
	if w := do(); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the tenant limit, got %d", w.Code)
	}

	scope := policy.tenantScope(tenantID.String())
	if store.counts[scope] != 3 {
		t.Fatalf("expected 3 window hits for %s, got %d", scope, store.counts[scope])
	}
}

func TestWriteRateLimitCountsPerIP(t *testing.T) {
	store := newFixedWindowStore()
	policy := NewWriteRateLimitPolicy("writes", time.Minute, 0, 1)
	handler := rateLimitedHandler(t, policy, store)

	do := func(forwardedFor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/items", nil)
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	if w := do("10.0.0.1"); w.Code != http.StatusCreated {
		t.Fatalf("first request status %d", w.Code)
	}
	if w := do("10.0.0.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for repeated IP, got %d", w.Code)
	}
	// a different client address has its own window
	if w := do("10.0.0.2"); w.Code != http.StatusCreated {
		t.Fatalf("second IP status %d", w.Code)
	}
}

func TestWriteRateLimitIgnoresReads(t *testing.T) {
	store := newFixedWindowStore()
	policy := NewWriteRateLimitPolicy("writes", time.Minute, 1, 1)
	handler := WriteRateLimit(policy, store, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("read %d: status %d", i+1, w.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("reads touched the limiter: %v", store.counts)
	}
}
