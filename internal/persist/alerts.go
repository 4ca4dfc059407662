package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shoplens/internal/kv"
	"github.com/maltedev/shoplens/internal/models"
)

// AlertStore keeps one alert per (product, store) pair.
type AlertStore struct {
	items *collection[models.PriceAlert]
}

func NewAlertStore(backend kv.Backend, logger *slog.Logger) *AlertStore {
	return &AlertStore{
		items: newCollection[models.PriceAlert](backend, KeyPriceAlerts, logger),
	}
}

// Upsert replaces the alert for the same product and store, keeping its id and
// creation time, or appends a new one.
func (s *AlertStore) Upsert(ctx context.Context, alert models.PriceAlert) (models.PriceAlert, error) {
	err := s.items.mutate(ctx, func(items []models.PriceAlert) ([]models.PriceAlert, bool) {
		for i := range items {
			if items[i].SameTarget(alert) {
				alert.ID = items[i].ID
				alert.CreatedAt = items[i].CreatedAt
				items[i] = alert
				return items, true
			}
		}

		if alert.ID == "" {
			alert.ID = uuid.New().String()
		}
		if alert.CreatedAt.IsZero() {
			alert.CreatedAt = time.Now()
		}
		return append(items, alert), true
	})
	if err != nil {
		return models.PriceAlert{}, err
	}
	return alert, nil
}

// RecordCheck stores a fresh price and check time on an enabled alert and returns
// the updated record. It reports false, without writing, when the alert is gone
// or disabled.
func (s *AlertStore) RecordCheck(ctx context.Context, alertID string, price float64, checkedAt time.Time) (models.PriceAlert, bool, error) {
	var (
		updated models.PriceAlert
		found   bool
	)
	err := s.items.mutate(ctx, func(items []models.PriceAlert) ([]models.PriceAlert, bool) {
		for i := range items {
			if items[i].ID != alertID {
				continue
			}
			if !items[i].Enabled {
				return items, false
			}
			items[i].CurrentPrice = price
			items[i].LastChecked = &checkedAt
			updated = items[i]
			found = true
			return items, true
		}
		return items, false
	})
	if err != nil {
		return models.PriceAlert{}, false, err
	}
	return updated, found, nil
}

func (s *AlertStore) Remove(ctx context.Context, alertID string) error {
	return s.items.mutate(ctx, func(items []models.PriceAlert) ([]models.PriceAlert, bool) {
		return filter(items, func(a models.PriceAlert) bool { return a.ID != alertID })
	})
}

func (s *AlertStore) ListActive(ctx context.Context) []models.PriceAlert {
	active, _ := filter(s.items.list(ctx), func(a models.PriceAlert) bool { return a.Enabled })
	return active
}

func (s *AlertStore) List(ctx context.Context) []models.PriceAlert {
	return s.items.list(ctx)
}

func (s *AlertStore) Clear(ctx context.Context) error {
	return s.items.clear(ctx)
}
