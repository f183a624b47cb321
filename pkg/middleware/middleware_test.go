package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func withUser(id string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), logger.UserIDKey, id)))
	})
}

func TestIdempotencyMiddleware_ReplaysPerUser(t *testing.T) {
	store := &memStore{data: map[string]string{}}
	calls := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"n":1}`))
	})
	h := IdempotencyMiddleware(store, time.Hour)(inner)

	do := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "k1")
		rec := httptest.NewRecorder()
		withUser(user, h).ServeHTTP(rec, req)
		return rec
	}

	if rec := do("alice"); rec.Code != http.StatusCreated {
		t.Fatalf("first call: expected 201, got %d", rec.Code)
	}
	rec := do("alice")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"n":1}` {
		t.Fatalf("replay: got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatal("expected replay header")
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d", calls)
	}

	if rec := do("bob"); rec.Code != http.StatusCreated {
		t.Fatalf("other user must not see alice's replay, got %d", rec.Code)
	}
	if calls != 2 {
		t.Fatalf("expected 2 handler calls, got %d", calls)
	}
}

func TestIdempotencyMiddleware_SkipsFailuresAndNonPost(t *testing.T) {
	store := &memStore{data: map[string]string{}}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	h := IdempotencyMiddleware(store, time.Hour)(inner)

	req := httptest.NewRequest(http.MethodPost, "/payments", nil)
	req.Header.Set("Idempotency-Key", "k2")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if len(store.data) != 0 {
		t.Fatal("failed responses must not be cached")
	}

	req = httptest.NewRequest(http.MethodGet, "/payments", nil)
	req.Header.Set("Idempotency-Key", "k2")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if len(store.data) != 0 {
		t.Fatal("GET must not be cached")
	}
}

func TestRequestID_PropagatesHeader(t *testing.T) {
	var seen interface{}
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context().Value(logger.RequestIDKey)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc" || rec.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("request id not propagated: ctx=%v header=%q", seen, rec.Header().Get("X-Request-ID"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}
}

func TestHealth(t *testing.T) {
	h := ServiceName("api")(Health(http.NotFoundHandler()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	if body.Status != "ok" || body.Service != "api" {
		t.Fatalf("unexpected health body %+v", body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("other paths should pass through, got %d", rec.Code)
	}
}

func TestRequestID_ReplacesOversizedHeader(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", maxRequestIDLen+1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); len(got) > maxRequestIDLen || got == "" {
		t.Fatalf("expected a fresh id, got %q", got)
	}
}
