package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/crop"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/visitor"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/router"
)

// sysClock implements edit.Clock using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
	Hub    *visitor.Hub

	backend *backend
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	// config.Load has already merged .env into the environment the logger reads
	logger.Init()
	zlog.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("log_format", cfg.LogFormat).
		Msg("config loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(rootCtx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Str("backend", cfg.Backend).Msg("startup failed")
	}
	defer app.Close()

	go app.Hub.Run(rootCtx, cfg.VisitorSweepInterval)

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.Backend).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		zlog.Info().Msg("shutdown signal received")
	case err := <-errCh:
		zlog.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		zlog.Warn().Err(err).Msg("http shutdown incomplete")
	}
	zlog.Info().Msg("shutdown complete")
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	// 1) Infrastructure
	var (
		b   *backend
		err error
	)
	switch cfg.Backend {
	case config.BackendSupabase:
		b, err = newSupabaseBackend(cfg)
	default:
		b, err = newLocalBackend(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	// 2) Application
	previews := crop.NewMemoryPreviews()
	hub := visitor.NewHub(visitor.Deps{
		Provider:  b.provider,
		Roles:     b.roles,
		Lister:    b.lister,
		Blobs:     b.blobs,
		Records:   b.records,
		Publisher: b.publisher,
		Clock:     sysClock{},
		Previews:  previews,
		Limits:    crop.DefaultLimits,
		Log:       logger.Logger,
	}, cfg.VisitorIdleTTL)

	// 3) Transport
	handler := router.New(router.Deps{
		Hub:      hub,
		Previews: previews,
		Checks:   b.checks,
	}, cfg)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	return &App{Config: cfg, Server: srv, Hub: hub, backend: b}, nil
}

// Close tears visitors down before the collaborators they use.
func (a *App) Close() {
	a.Hub.Close()
	a.backend.close()
}
