package persist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shoplens/internal/kv"
	"github.com/maltedev/shoplens/internal/models"
)

const DefaultResultsLimit = 50

var ErrResultNotFound = errors.New("search result not found")

// ResultStore keeps complete search results, newest first.
type ResultStore struct {
	items *collection[models.SearchResult]
	limit int
}

func NewResultStore(backend kv.Backend, limit int, logger *slog.Logger) *ResultStore {
	if limit <= 0 {
		limit = DefaultResultsLimit
	}
	return &ResultStore{
		items: newCollection[models.SearchResult](backend, KeySearchResults, logger),
		limit: limit,
	}
}

func (s *ResultStore) Save(ctx context.Context, result models.SearchResult) (models.SearchResult, error) {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}

	err := s.items.mutate(ctx, func(items []models.SearchResult) ([]models.SearchResult, bool) {
		items, _ = filter(items, func(r models.SearchResult) bool { return r.ID != result.ID })
		return prepend(items, result, s.limit), true
	})
	return result, err
}

func (s *ResultStore) List(ctx context.Context) []models.SearchResult {
	return s.items.list(ctx)
}

func (s *ResultStore) Get(ctx context.Context, id string) (models.SearchResult, error) {
	for _, r := range s.items.list(ctx) {
		if r.ID == id {
			return r, nil
		}
	}
	return models.SearchResult{}, ErrResultNotFound
}

func (s *ResultStore) Remove(ctx context.Context, id string) error {
	return s.items.mutate(ctx, func(items []models.SearchResult) ([]models.SearchResult, bool) {
		return filter(items, func(r models.SearchResult) bool { return r.ID != id })
	})
}

func (s *ResultStore) Clear(ctx context.Context) error {
	return s.items.clear(ctx)
}
