// Command notify consumes domain events from NATS and delivers user
// notifications.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/diagnosis/homepro-bookings/internal/notify"
	"github.com/diagnosis/homepro-bookings/pkg/config"
	"github.com/diagnosis/homepro-bookings/pkg/events"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
	mw "github.com/diagnosis/homepro-bookings/pkg/middleware"
)

func main() {
	os.Exit(start())
}

func start() int {
	cfg := config.Load()
	logCloser := logger.Setup(cfg.Log)
	defer logCloser.Close()

	if cfg.NATS.URL == "" {
		logger.Error("NATS_URL is required for the notify worker")
		return 1
	}

	if err := run(cfg); err != nil {
		logger.Error("Notify worker exited with error", "error", err)
		return 1
	}
	return 0
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		return err
	}
	defer bus.Close()

	n := notify.New(notify.LogSink{})
	for _, subject := range []string{events.AllBookingEvents, events.AllPaymentEvents} {
		if _, err := bus.Subscribe(subject, n.Handle); err != nil {
			return err
		}
		logger.Info("Subscribed", "subject", subject)
	}

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("notify"))
	r.Use(mw.Health)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.NotifyPort,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting notify worker", "port", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
