package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fitbook-service/internal/config"
	bookingCancel "fitbook-service/internal/http-server/handlers/bookings/cancel"
	bookingCreate "fitbook-service/internal/http-server/handlers/bookings/create"
	bookingDelete "fitbook-service/internal/http-server/handlers/bookings/delete"
	bookingGet "fitbook-service/internal/http-server/handlers/bookings/get"
	bookingReschedule "fitbook-service/internal/http-server/handlers/bookings/reschedule"
	clientCreate "fitbook-service/internal/http-server/handlers/clients/create"
	clientGet "fitbook-service/internal/http-server/handlers/clients/get"
	notificationGet "fitbook-service/internal/http-server/handlers/notifications/get"
	pricingCreate "fitbook-service/internal/http-server/handlers/pricing/create"
	pricingGet "fitbook-service/internal/http-server/handlers/pricing/get"
	settingsGet "fitbook-service/internal/http-server/handlers/settings/get"
	settingsUpdate "fitbook-service/internal/http-server/handlers/settings/update"
	slotGet "fitbook-service/internal/http-server/handlers/slots/get"
	"fitbook-service/internal/lock"
	"fitbook-service/internal/notify"
	svc "fitbook-service/internal/service"
	"fitbook-service/internal/storage/postgres"
	slogpretty "fitbook-service/pkg/handlers/slogPretty"
	"fitbook-service/pkg/middleware/identity"
	"fitbook-service/pkg/middleware/mwLogger"
	"fitbook-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trainer-ID")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	notifier := notify.New(log, storage)

	service := svc.NewService(storage, locker, notifier)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)
	router.Use(identity.New())

	// Availability settings
	router.Get("/settings", settingsGet.New(log, service))
	router.Put("/settings", settingsUpdate.New(log, service))

	// Slot preview
	router.Get("/slots", slotGet.New(log, service))

	// Bookings
	router.Post("/bookings", bookingCreate.New(log, service))
	router.Get("/bookings", bookingGet.New(log, service))
	router.Get("/bookings/{id}", bookingGet.New(log, service))
	router.Patch("/bookings/{id}/cancel", bookingCancel.New(log, service))
	router.Put("/bookings/{id}", bookingReschedule.New(log, service))
	router.Delete("/bookings/{id}", bookingDelete.New(log, service))

	// Clients
	router.Post("/clients", clientCreate.New(log, service))
	router.Get("/clients", clientGet.New(log, service))
	router.Get("/clients/{id}", clientGet.New(log, service))

	// Session pricing
	router.Post("/session_pricing", pricingCreate.New(log, service))
	router.Get("/session_pricing", pricingGet.New(log, service))

	// Notifications
	router.Get("/notifications", notificationGet.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
