// Package persist holds the stores that keep shoplens collections in a key-value
// backend. Each store owns one key whose value is a JSON array of records. Reads
// never fail: a missing key or a value that does not parse is an empty collection.
// Every mutation rewrites the whole array.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maltedev/shoplens/internal/kv"
)

const (
	KeySearchHistory = "shoplens_search_history"
	KeySearchResults = "shoplens_search_results"
	KeyWishlist      = "shoplens_wishlist"
	KeyPriceAlerts   = "shoplens_price_alerts"
	KeyScans         = "shoplens_scans"
)

// collection is the read-modify-write core shared by all stores.
// A nil backend turns every operation into a no-op over an empty list.
type collection[T any] struct {
	mu      sync.Mutex
	backend kv.Backend
	key     string
	logger  *slog.Logger
}

func newCollection[T any](backend kv.Backend, key string, logger *slog.Logger) *collection[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &collection[T]{
		backend: backend,
		key:     key,
		logger:  logger.With("component", "persist", "key", key),
	}
}

func (c *collection[T]) load(ctx context.Context) []T {
	items := []T{}
	if c.backend == nil {
		return items
	}

	raw, ok, err := c.backend.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn("failed to read collection, using empty", "error", err)
		return items
	}
	if !ok || raw == "" {
		return items
	}

	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("failed to parse collection, using empty", "error", err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

func (c *collection[T]) save(ctx context.Context, items []T) error {
	if c.backend == nil {
		return nil
	}
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.key, err)
	}
	if err := c.backend.Set(ctx, c.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist %s: %w", c.key, err)
	}
	return nil
}

func (c *collection[T]) clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend == nil {
		return nil
	}
	if err := c.backend.Remove(ctx, c.key); err != nil {
		return fmt.Errorf("failed to clear %s: %w", c.key, err)
	}
	return nil
}

// list takes the lock so a reader never observes a half-applied mutation from
// this process.
func (c *collection[T]) list(ctx context.Context) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// mutate runs fn over the current items and persists the result when fn reports
// a change.
func (c *collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, bool)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, changed := fn(c.load(ctx))
	if !changed {
		return nil
	}
	return c.save(ctx, items)
}

func filter[T any](items []T, keep func(T) bool) ([]T, bool) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out, len(out) != len(items)
}

func prepend[T any](items []T, item T, limit int) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	out = append(out, items...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
