package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/diagnosis/homepro-bookings/internal/http/response"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

// Counter is a fixed-window hit counter, implemented by cache.RedisStore.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Prefix   string
	// TrustProxy keys the default KeyFunc on X-Forwarded-For / X-Real-IP.
	// Leave it off unless a proxy that overwrites those headers sits in front.
	TrustProxy bool
	KeyFunc    func(r *http.Request) []string
}

type RateLimiter struct {
	counter Counter
	config  RateLimitConfig
}

func NewRateLimiter(counter Counter, config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIPKeyFunc(config.TrustProxy)
	}
	return &RateLimiter{counter: counter, config: config}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, key := range rl.config.KeyFunc(r) {
				if !rl.allow(r.Context(), key) {
					response.WriteError(w, http.StatusTooManyRequests, "Too many requests. Try again later.")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allow fails open when the counter is unreachable.
func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	hashed := fmt.Sprintf("ratelimit:%s:%x", rl.config.Prefix, sha256.Sum256([]byte(key)))
	n, err := rl.counter.Incr(ctx, hashed, rl.config.Window)
	if err != nil {
		logger.WarnContext(ctx, "Rate limit check failed", "error", err)
		return true
	}
	return n <= int64(rl.config.Requests)
}

func ClientIPKeyFunc(trustProxy bool) func(r *http.Request) []string {
	return func(r *http.Request) []string {
		if ip := clientIP(r, trustProxy); ip != "" {
			return []string{"ip:" + ip}
		}
		return nil
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
