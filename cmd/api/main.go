package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/diagnosis/homepro-bookings/internal/http/middleware"
	"github.com/diagnosis/homepro-bookings/internal/http/router"
	"github.com/diagnosis/homepro-bookings/internal/repo"
	"github.com/diagnosis/homepro-bookings/internal/repo/memory"
	"github.com/diagnosis/homepro-bookings/internal/repo/postgres"
	"github.com/diagnosis/homepro-bookings/internal/service"
	"github.com/diagnosis/homepro-bookings/pkg/auth"
	"github.com/diagnosis/homepro-bookings/pkg/cache"
	"github.com/diagnosis/homepro-bookings/pkg/config"
	"github.com/diagnosis/homepro-bookings/pkg/database"
	"github.com/diagnosis/homepro-bookings/pkg/events"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
	mw "github.com/diagnosis/homepro-bookings/pkg/middleware"
)

type stores struct {
	bookings repo.BookingRepo
	payments repo.PaymentRepo
	users    repo.UserRepo
}

func main() {
	os.Exit(start())
}

// start owns the log file so it is flushed before main exits.
func start() int {
	cfg := config.Load()
	logCloser := logger.Setup(cfg.Log)
	defer logCloser.Close()

	if err := run(cfg); err != nil {
		logger.Error("API exited with error", "error", err)
		return 1
	}
	return 0
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st stores
	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, pool); err != nil {
				return err
			}
			logger.Info("Database schema applied")
		}
		st = stores{
			bookings: postgres.NewBookingRepo(pool),
			payments: postgres.NewPaymentRepo(pool),
			users:    postgres.NewUsersRepo(pool),
		}
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		mem := memory.New()
		st = stores{bookings: mem.Bookings(), payments: mem.Payments(), users: mem.Users()}
	}

	var bus events.Publisher = events.NoopBus{}
	if cfg.NATS.URL != "" {
		nb, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Warn("NATS unavailable, events disabled", "error", err)
		} else {
			bus = nb
		}
	}
	defer bus.Close()

	var (
		idem    mw.IdempotencyStore
		counter middleware.Counter
	)
	if cfg.Redis.URL != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("Redis unavailable, Idempotency-Key and rate limits disabled", "error", err)
		} else {
			defer rs.Close()
			idem, counter = rs, rs
		}
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Audience, cfg.Auth.AccessTokenTTL)

	handler := router.NewRouter(router.Deps{
		Bookings:       service.NewBookingService(st.bookings, bus),
		Payments:       service.NewPaymentService(st.payments, bus),
		Auth:           service.NewAuthService(st.users, issuer),
		Issuer:         issuer,
		Idempotency:    idem,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		AuthCounter:    counter,
		AuthRateLimit:  cfg.Auth.RateLimit,
		AuthRateWindow: cfg.Auth.RateWindow,
		TrustProxy:     cfg.Auth.TrustProxy,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting homepro-bookings API", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down homepro-bookings API...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
