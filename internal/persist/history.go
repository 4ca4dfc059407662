package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shoplens/internal/kv"
	"github.com/maltedev/shoplens/internal/models"
)

const DefaultHistoryLimit = 20

// HistoryStore is the newest-first search log, capped at limit entries.
type HistoryStore struct {
	items *collection[models.SearchHistoryItem]
	limit int
}

func NewHistoryStore(backend kv.Backend, limit int, logger *slog.Logger) *HistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryStore{
		items: newCollection[models.SearchHistoryItem](backend, KeySearchHistory, logger),
		limit: limit,
	}
}

func (s *HistoryStore) Limit() int {
	return s.limit
}

// Append puts item at the head of the log and drops the oldest entries past the cap.
func (s *HistoryStore) Append(ctx context.Context, item models.SearchHistoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}
	if item.TopMatch != nil {
		snap := item.TopMatch.Snapshot()
		item.TopMatch = &snap
	}

	return s.items.mutate(ctx, func(items []models.SearchHistoryItem) ([]models.SearchHistoryItem, bool) {
		return prepend(items, item, s.limit), true
	})
}

func (s *HistoryStore) List(ctx context.Context) []models.SearchHistoryItem {
	return s.items.list(ctx)
}

func (s *HistoryStore) Remove(ctx context.Context, id string) error {
	return s.items.mutate(ctx, func(items []models.SearchHistoryItem) ([]models.SearchHistoryItem, bool) {
		return filter(items, func(it models.SearchHistoryItem) bool { return it.ID != id })
	})
}

func (s *HistoryStore) Clear(ctx context.Context) error {
	return s.items.clear(ctx)
}
