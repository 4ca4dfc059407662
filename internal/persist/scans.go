package persist

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maltedev/shoplens/internal/kv"
	"github.com/maltedev/shoplens/internal/models"
)

var ErrScanNotFound = errors.New("scan not found")

type ScanStore struct {
	items *collection[models.ScanResult]
}

func NewScanStore(backend kv.Backend, logger *slog.Logger) *ScanStore {
	return &ScanStore{
		items: newCollection[models.ScanResult](backend, KeyScans, logger),
	}
}

// Save replaces the scan with the same id in place, or puts a new scan first.
func (s *ScanStore) Save(ctx context.Context, scan models.ScanResult) error {
	return s.items.mutate(ctx, func(items []models.ScanResult) ([]models.ScanResult, bool) {
		for i := range items {
			if items[i].ID == scan.ID {
				items[i] = scan
				return items, true
			}
		}
		return prepend(items, scan, 0), true
	})
}

func (s *ScanStore) Get(ctx context.Context, id string) (models.ScanResult, error) {
	for _, scan := range s.items.list(ctx) {
		if scan.ID == id {
			return scan, nil
		}
	}
	return models.ScanResult{}, ErrScanNotFound
}

// Update applies fn to the stored scan and persists it.
func (s *ScanStore) Update(ctx context.Context, id string, fn func(*models.ScanResult)) (models.ScanResult, error) {
	var updated models.ScanResult
	found := false

	err := s.items.mutate(ctx, func(items []models.ScanResult) ([]models.ScanResult, bool) {
		for i := range items {
			if items[i].ID == id {
				fn(&items[i])
				updated = items[i]
				found = true
				return items, true
			}
		}
		return items, false
	})
	if err != nil {
		return models.ScanResult{}, err
	}
	if !found {
		return models.ScanResult{}, ErrScanNotFound
	}
	return updated, nil
}

func (s *ScanStore) List(ctx context.Context) []models.ScanResult {
	return s.items.list(ctx)
}

func (s *ScanStore) Remove(ctx context.Context, id string) error {
	return s.items.mutate(ctx, func(items []models.ScanResult) ([]models.ScanResult, bool) {
		return filter(items, func(scan models.ScanResult) bool { return scan.ID != id })
	})
}

func (s *ScanStore) Clear(ctx context.Context) error {
	return s.items.clear(ctx)
}
