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

	"github.com/maltedev/shoplens/internal/api"
	"github.com/maltedev/shoplens/internal/app"
	"github.com/maltedev/shoplens/internal/config"
	"github.com/maltedev/shoplens/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled or the listener fails. The app is
// closed before it returns.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		cancel()
		if err := a.Close(); err != nil {
			log.Error("failed to close app", "error", err)
		}
	}()

	if n, err := a.Scans.FailInterrupted(ctx); err != nil {
		log.Error("failed to recover interrupted scans", "error", err)
	} else if n > 0 {
		log.Info("recovered interrupted scans", "count", n)
	}

	if cfg.Events.CheckInterval > 0 {
		go a.Watcher.Run(ctx, cfg.Events.CheckInterval)
	}

	handlers := api.NewHandlers(api.Deps{
		Search:  a.Search,
		Stores:  a.Stores,
		Catalog: a.Catalog,
		Quotes:  a.Quotes,
		Scans:   a.Scans,
		Watcher: a.Watcher,
	}, log)

	router := api.NewRouter(handlers, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.WriteTimeout,
		Health: func() map[string]interface{} {
			return map[string]interface{}{
				"storage": cfg.Storage.Backend,
				"pricing": cfg.Pricing.Source,
			}
		},
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Backend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
