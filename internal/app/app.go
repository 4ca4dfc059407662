// Package app wires configuration into the shoplens services shared by the
// server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/shoplens/internal/catalog"
	"github.com/maltedev/shoplens/internal/config"
	"github.com/maltedev/shoplens/internal/events"
	"github.com/maltedev/shoplens/internal/kv"
	"github.com/maltedev/shoplens/internal/latency"
	"github.com/maltedev/shoplens/internal/persist"
	"github.com/maltedev/shoplens/internal/pricing"
	"github.com/maltedev/shoplens/internal/recognition"
	"github.com/maltedev/shoplens/internal/scanner"
	"github.com/maltedev/shoplens/internal/search"
	"github.com/maltedev/shoplens/internal/watch"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   kv.Store
	Stores  *persist.Stores
	Catalog *catalog.Catalog
	Quotes  pricing.QuoteSource
	Search  *search.Service
	Scans   *scanner.Manager
	Watcher *watch.Watcher

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := kv.Open(ctx, kv.Options{
		Type:          cfg.Storage.Backend,
		FilePath:      cfg.Storage.FilePath,
		DataDir:       cfg.Storage.DataDir,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		RedisPrefix:   cfg.Redis.Prefix,
		PostgresDSN:   cfg.Database.DSN(),
		MaxConns:      cfg.Database.MaxConns,
	}, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Catalog: catalog.Default(),
		closers: []func() error{store.Close},
	}
	a.Stores = persist.NewStores(store, persist.Limits{
		History: cfg.Limits.History,
		Results: cfg.Limits.Results,
	}, logger)

	delay := latency.New(cfg.Simulation.MinDelay, cfg.Simulation.MaxDelay)
	seed := cfg.Simulation.Seed

	switch cfg.Pricing.Source {
	case "html":
		a.Quotes = pricing.NewHTMLSource(a.Catalog, pricing.HTMLSourceConfig{
			URLTemplates:      cfg.Pricing.URLTemplates,
			RequestsPerSecond: cfg.Pricing.RequestsPerSecond,
			Concurrency:       cfg.Pricing.Concurrency,
			Timeout:           cfg.Pricing.Timeout,
		}, logger)
	default:
		a.Quotes = pricing.NewSimulated(a.Catalog, delay, seed)
	}

	a.Search = search.NewService(
		recognition.NewSimulated(a.Catalog, delay, seed),
		a.Quotes,
		a.Stores.History,
		a.Stores.Results,
		logger,
	)

	a.Scans = scanner.NewManager(
		a.Stores.Scans,
		scanner.NewSimulated(cfg.Simulation.KeepProbability, delay, seed),
		scanner.Config{TickInterval: cfg.Scanner.TickInterval, TimeUnit: cfg.Scanner.TimeUnit},
		logger,
	)
	a.closers = append(a.closers, func() error {
		a.Scans.Shutdown()
		return nil
	})

	publisher, err := a.publisher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Watcher = watch.New(a.Stores.Alerts, a.Stores.Wishlist, a.Catalog, a.Quotes, publisher, logger)

	return a, nil
}

func (a *App) publisher(ctx context.Context) (events.Publisher, error) {
	if a.Config.Events.Publisher != "redis" {
		return events.NewLogPublisher(a.Logger), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis for events: %w", err)
	}

	pub := events.NewRedisPublisher(client, a.Config.Events.Stream, a.Logger)
	a.closers = append(a.closers, pub.Close)
	return pub, nil
}

// Close stops background scans and releases storage, newest resource first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
