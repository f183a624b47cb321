package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diagnosis/homepro-bookings/pkg/auth"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

type memCounter struct {
	hits map[string]int64
	err  error
}

func (m *memCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.hits[key]++
	return m.hits[key], nil
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter_BlocksAfterLimitPerIP(t *testing.T) {
	rl := NewRateLimiter(&memCounter{hits: map[string]int64{}}, RateLimitConfig{Requests: 2, Window: time.Minute, Prefix: "auth", TrustProxy: true})
	h := rl.Middleware()(okHandler)

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("1.2.3.4"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := call("1.2.3.4"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := call("5.6.7.8"); code != http.StatusOK {
		t.Fatalf("other IP should pass, got %d", code)
	}
}

func TestRateLimiter_IgnoresForwardedHeadersByDefault(t *testing.T) {
	rl := NewRateLimiter(&memCounter{hits: map[string]int64{}}, RateLimitConfig{Requests: 2, Window: time.Minute, Prefix: "auth"})
	h := rl.Middleware()(okHandler)

	codes := make([]int, 0, 3)
	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		req.Header.Set("X-Forwarded-For", spoofed)
		req.Header.Set("X-Real-IP", spoofed)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("rotating X-Forwarded-For must not reset the limit, got %v", codes)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl := NewRateLimiter(&memCounter{err: errors.New("redis down")}, RateLimitConfig{Requests: 1, Window: time.Minute})
	h := rl.Middleware()(okHandler)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on counter failure, got %d", rec.Code)
		}
	}
}

func TestRequireJWT_SetsClaimsAndLogUser(t *testing.T) {
	issuer := auth.NewIssuer("secret", "homepro-api", time.Hour)
	tok, _ := issuer.NewAccessToken("user-1", "u@example.com", "user")

	var gotID, gotLogID string
	h := RequireJWT(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserID(r)
		gotLogID, _ = r.Context().Value(logger.UserIDKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotID != "user-1" || gotLogID != "user-1" {
		t.Fatalf("unexpected ids %q %q", gotID, gotLogID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
