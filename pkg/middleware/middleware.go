package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

// maxRequestIDLen bounds client-supplied request IDs before they reach logs.
const maxRequestIDLen = 128

// RequestID reuses a caller's X-Request-ID when it is sane and mints one
// otherwise. The ID is echoed back and stored for the logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), logger.RequestIDKey, id)))
	})
}

// Logging emits one structured line per request through chi's RequestLogger.
func Logging(next http.Handler) http.Handler {
	return middleware.RequestLogger(requestLogFormatter{})(next)
}

type requestLogFormatter struct{}

func (requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{r: r}
}

type requestLogEntry struct {
	r *http.Request
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	ctx := e.r.Context()
	logger.WithContext(ctx).Log(ctx, level, "HTTP request",
		"method", e.r.Method,
		"path", e.r.URL.Path,
		"route", routePattern(e.r),
		"status", status,
		"bytes", bytes,
		"elapsed_ms", elapsed.Milliseconds(),
		"remote_addr", e.r.RemoteAddr,
	)
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	logger.ErrorContext(e.r.Context(), "HTTP handler panicked",
		"panic", v,
		"method", e.r.Method,
		"path", e.r.URL.Path,
		"stack", string(stack),
	)
}

// routePattern is the matched chi pattern, e.g. /bookings/{id}, so log lines
// group by endpoint rather than by record id.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}

// ServiceName tags the request context so every log line names its process.
func ServiceName(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), logger.ServiceKey, name)))
		})
	}
}

type healthStatus struct {
	Status    string    `json:"status"`
	Service   string    `json:"service,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Health answers GET /healthz ahead of routing and authentication.
func Health(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		service, _ := r.Context().Value(logger.ServiceKey).(string)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		body := healthStatus{Status: "ok", Service: service, Timestamp: time.Now().UTC().Truncate(time.Second)}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.WarnContext(r.Context(), "Failed to write health response", "error", err)
		}
	})
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// IdempotencyMiddleware replays the first successful response to a POST that
// carries the same Idempotency-Key. Keys are scoped to the authenticated user,
// so it must run after authentication.
func IdempotencyMiddleware(store IdempotencyStore, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope, _ := r.Context().Value(logger.UserIDKey).(string)
			hasher := sha256.New()
			hasher.Write([]byte(scope + ":" + r.URL.Path + ":" + key))
			hashedKey := fmt.Sprintf("idempotency:%x", hasher.Sum(nil))

			if existing, err := store.Get(r.Context(), hashedKey); err == nil && existing != "" {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(http.StatusOK)
				if _, err := w.Write([]byte(existing)); err != nil {
					logger.WarnContext(r.Context(), "Idempotent replay write failed", "error", err)
				}
				return
			} else if err != nil {
				logger.WarnContext(r.Context(), "Idempotency lookup failed", "error", err)
			}

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			if recorder.statusCode >= 200 && recorder.statusCode < 300 {
				if err := store.Set(r.Context(), hashedKey, string(recorder.body), ttl); err != nil {
					logger.WarnContext(r.Context(), "Idempotency store failed", "error", err)
				}
			}
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       []byte
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(body []byte) (int, error) {
	r.body = append(r.body, body...)
	return r.ResponseWriter.Write(body)
}
