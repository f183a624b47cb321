// Package router assembles the chi router for the bookings API.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/diagnosis/homepro-bookings/internal/http/handlers"
	"github.com/diagnosis/homepro-bookings/internal/http/middleware"
	"github.com/diagnosis/homepro-bookings/internal/http/response"
	"github.com/diagnosis/homepro-bookings/pkg/auth"
	mw "github.com/diagnosis/homepro-bookings/pkg/middleware"
)

type Deps struct {
	Bookings handlers.BookingService
	Payments handlers.PaymentService
	Auth     handlers.AuthService
	Issuer   *auth.Issuer

	// Idempotency is optional; nil disables Idempotency-Key replay.
	Idempotency    mw.IdempotencyStore
	IdempotencyTTL time.Duration

	// AuthCounter is optional; nil disables rate limiting on /auth.
	AuthCounter    middleware.Counter
	AuthRateLimit  int
	AuthRateWindow time.Duration
	TrustProxy     bool

	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("homepro-bookings"))
	r.Use(mw.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	mount := func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if d.AuthCounter != nil && d.AuthRateLimit > 0 {
				r.Use(middleware.NewRateLimiter(d.AuthCounter, middleware.RateLimitConfig{
					Requests:   d.AuthRateLimit,
					Window:     d.AuthRateWindow,
					Prefix:     "auth",
					TrustProxy: d.TrustProxy,
				}).Middleware())
			}
			r.Mount("/", handlers.NewAuthHandler(d.Auth, d.Issuer).Routes())
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireJWT(d.Issuer))
			if d.Idempotency != nil {
				r.Use(mw.IdempotencyMiddleware(d.Idempotency, d.IdempotencyTTL))
			}
			r.Mount("/bookings", handlers.NewBookingsHandler(d.Bookings).Routes())
			r.Mount("/payments", handlers.NewPaymentsHandler(d.Payments).Routes())
		})
	}
	mount(r)
	r.Route("/api", mount)

	return r
}
