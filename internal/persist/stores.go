package persist

import (
	"log/slog"

	"github.com/maltedev/shoplens/internal/kv"
)

type Limits struct {
	History int
	Results int
}

// Stores groups every collection kept in one backend.
type Stores struct {
	History  *HistoryStore
	Results  *ResultStore
	Wishlist *WishlistStore
	Alerts   *AlertStore
	Scans    *ScanStore
}

func NewStores(backend kv.Backend, limits Limits, logger *slog.Logger) *Stores {
	return &Stores{
		History:  NewHistoryStore(backend, limits.History, logger),
		Results:  NewResultStore(backend, limits.Results, logger),
		Wishlist: NewWishlistStore(backend, logger),
		Alerts:   NewAlertStore(backend, logger),
		Scans:    NewScanStore(backend, logger),
	}
}
