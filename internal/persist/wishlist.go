package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shoplens/internal/kv"
	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/pricing"
)

// WishlistStore holds at most one entry per product id, newest first.
type WishlistStore struct {
	items *collection[models.WishlistItem]
}

func NewWishlistStore(backend kv.Backend, logger *slog.Logger) *WishlistStore {
	return &WishlistStore{
		items: newCollection[models.WishlistItem](backend, KeyWishlist, logger),
	}
}

// Add stores item unless its product is already on the list. It reports whether
// the item was added.
func (s *WishlistStore) Add(ctx context.Context, item models.WishlistItem) (bool, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	item.Product = item.Product.Snapshot()

	added := false
	err := s.items.mutate(ctx, func(items []models.WishlistItem) ([]models.WishlistItem, bool) {
		for _, it := range items {
			if it.Product.ID == item.Product.ID {
				return items, false
			}
		}
		added = true
		return prepend(items, item, 0), true
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *WishlistStore) Remove(ctx context.Context, productID string) error {
	return s.items.mutate(ctx, func(items []models.WishlistItem) ([]models.WishlistItem, bool) {
		return filter(items, func(it models.WishlistItem) bool { return it.Product.ID != productID })
	})
}

// Update merges update into the entry for productID. It reports whether the entry
// exists.
func (s *WishlistStore) Update(ctx context.Context, productID string, update models.WishlistUpdate) (bool, error) {
	found := false
	err := s.items.mutate(ctx, func(items []models.WishlistItem) ([]models.WishlistItem, bool) {
		for i := range items {
			if items[i].Product.ID == productID {
				update.Apply(&items[i])
				found = true
				return items, true
			}
		}
		return items, false
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// RefreshBestPrice replaces the best-price snapshot with the cheapest in-stock
// quote. The snapshot is otherwise left as it was when the item was added.
func (s *WishlistStore) RefreshBestPrice(ctx context.Context, productID string, quotes []models.PriceInfo) (bool, error) {
	best, ok := pricing.BestDeal(quotes)
	if !ok {
		return false, nil
	}
	total := best.Total()
	return s.Update(ctx, productID, models.WishlistUpdate{
		CurrentBestPrice: &total,
		CurrentBestStore: &best.StoreName,
	})
}

func (s *WishlistStore) Contains(ctx context.Context, productID string) bool {
	for _, it := range s.items.list(ctx) {
		if it.Product.ID == productID {
			return true
		}
	}
	return false
}

func (s *WishlistStore) List(ctx context.Context) []models.WishlistItem {
	return s.items.list(ctx)
}

func (s *WishlistStore) Clear(ctx context.Context) error {
	return s.items.clear(ctx)
}
