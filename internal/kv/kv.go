// Package kv provides the string key-value backends that shoplens collections are
// persisted to. Every backend stores opaque string values under string keys; the
// persist package owns the JSON encoding.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend is the minimal key-value contract the stores depend on.
// Get reports ok=false for a missing key; that is not an error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Store is a Backend that holds resources.
type Store interface {
	Backend
	Close() error
}

type Options struct {
	Type string // memory, file, sqlite, redis, postgres

	FilePath string
	DataDir  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	PostgresDSN string
	MaxConns    int32
}

// Open builds the backend selected by opts.Type.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	logger = logger.With("component", "kv", "backend", opts.Type)

	switch opts.Type {
	case "", "memory":
		logger.Info("using in-memory storage")
		return NewMemory(), nil

	case "file":
		fs, err := NewFile(opts.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		logger.Info("using file storage", "path", opts.FilePath)
		return fs, nil

	case "sqlite":
		s, err := OpenSQLite(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		logger.Info("using sqlite storage", "dir", opts.DataDir)
		return s, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("using redis storage", "addr", opts.RedisAddr)
		return NewRedis(client, opts.RedisPrefix), nil

	case "postgres":
		pg, err := OpenPostgres(ctx, PostgresConfig{
			DSN:      opts.PostgresDSN,
			MaxConns: opts.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres storage")
		return pg, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Type)
}
