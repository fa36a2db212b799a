package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	fsmadapter "github.com/societyq/societyq/internal/adapter/fsm"
	handler "github.com/societyq/societyq/internal/adapter/http"
	"github.com/societyq/societyq/internal/adapter/otel"
	redisadapter "github.com/societyq/societyq/internal/adapter/redis"
	riveradapter "github.com/societyq/societyq/internal/adapter/river"
	"github.com/societyq/societyq/internal/adapter/sqlite"
	"github.com/societyq/societyq/internal/app"
	"github.com/societyq/societyq/internal/domain"
)

type config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	DatabasePath  string        `env:"DATABASE_PATH" envDefault:"societyq.db"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev-only-secret"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// noticeSweeper adapts the sqlite notice repository to the river
// NoticeSweeper interface, supplying the sweep time the same way
// app.NoticeService.DeactivateExpired does.
type noticeSweeper struct {
	repo *sqlite.NoticeRepository
}

func (s noticeSweeper) DeactivateExpired(ctx context.Context) (int, error) {
	return s.repo.DeactivateExpired(ctx, time.Now().UTC())
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	// --- Telemetry ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.OpenDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	redisTransport, err := redisadapter.New(redisadapter.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisTransport.Close()
	transport := otel.NewTracingTransport(redisTransport)

	notificationRouter := app.NewRouter(transport)

	riverClient, err := riveradapter.Setup(ctx, db, notificationRouter, noticeSweeper{store.Notices()})
	if err != nil {
		return fmt.Errorf("river setup: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}

	publisher := otel.NewTracingPublisher(riveradapter.NewPublisher(riverClient))

	// --- Application ---
	auth := app.NewAuthService(store.Users(), store.Societies(), cfg.JWTSecret, cfg.TokenTTL)

	svcs := handler.Services{
		Auth:      auth,
		Directory: app.NewDirectoryService(store.Societies(), store.Buildings(), store.Flats()),
		Members:   app.NewMemberService(store.Members(), store.Flats(), store.Users(), publisher),
		Allocations: app.NewAllocationService(store.Allocations(), store.Flats(),
			fsmadapter.New(domain.AllocationTransitions), publisher),
		Complaints: app.NewComplaintService(store.Complaints(), store.Flats(), store.Members(),
			fsmadapter.New(domain.ComplaintTransitions), publisher),
		Visitors: app.NewVisitorService(store.Visitors(), store.Flats(), store.Members(), publisher),
		Bills:    app.NewBillService(store.Bills(), store.Flats(), store.Members(), publisher),
		Notices:  app.NewNoticeService(store.Notices(), store.Societies(), publisher),
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware("societyq", otelchi.WithChiRoutes(router)))
	router.Use(handler.Authenticator(auth))

	api := humachi.New(router, huma.DefaultConfig("societyq", "0.1.0"))
	handler.Register(api, svcs)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("societyq listening", "port", cfg.Port)
		slog.Info("api docs", "url", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("river stop", "error", err)
	}

	return nil
}
