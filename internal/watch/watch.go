// Package watch re-quotes stored price alerts and wishlist items.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maltedev/shoplens/internal/catalog"
	"github.com/maltedev/shoplens/internal/events"
	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/persist"
	"github.com/maltedev/shoplens/internal/pricing"
)

// Report summarizes one CheckAll pass.
type Report struct {
	Checked   int                 `json:"checked"`
	Skipped   int                 `json:"skipped"`
	Triggered []models.PriceAlert `json:"triggered"`
	Refreshed int                 `json:"wishlistRefreshed"`
}

type Watcher struct {
	alerts    *persist.AlertStore
	wishlist  *persist.WishlistStore
	catalog   *catalog.Catalog
	quotes    pricing.QuoteSource
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

// New builds a watcher. wishlist may be nil, in which case best prices are not refreshed.
func New(alerts *persist.AlertStore, wishlist *persist.WishlistStore, c *catalog.Catalog,
	quotes pricing.QuoteSource, publisher events.Publisher, logger *slog.Logger) *Watcher {
	return &Watcher{
		alerts:    alerts,
		wishlist:  wishlist,
		catalog:   c,
		quotes:    quotes,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.With("component", "alert_watcher"),
	}
}

// Run checks all alerts every interval until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	w.logger.Info("alert watcher started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("alert watcher stopping")
			return
		case <-ticker.C:
			if _, err := w.CheckAll(ctx); err != nil {
				w.logger.Error("failed to check price alerts", "error", err)
			}
		}
	}
}

// CheckAll quotes every active alert's store, stores the current price and publishes
// an event for each alert at or below its target.
func (w *Watcher) CheckAll(ctx context.Context) (Report, error) {
	report := Report{Triggered: []models.PriceAlert{}}
	cache := make(map[string][]models.PriceInfo)

	for _, alert := range w.alerts.ListActive(ctx) {
		quotes, err := w.quotesFor(ctx, alert.ProductID, cache)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			w.logger.Warn("failed to quote alert", "alert_id", alert.ID, "product_id", alert.ProductID, "error", err)
			report.Skipped++
			continue
		}

		quote, ok := findStore(quotes, alert.StoreID)
		if !ok {
			report.Skipped++
			continue
		}

		fresh, ok, err := w.alerts.RecordCheck(ctx, alert.ID, quote.Price, w.now())
		if err != nil {
			return report, fmt.Errorf("failed to update alert %s: %w", alert.ID, err)
		}
		if !ok {
			// removed or disabled while quoting
			report.Skipped++
			continue
		}
		alert = fresh
		report.Checked++

		if !alert.Triggered() {
			continue
		}
		report.Triggered = append(report.Triggered, alert)

		err = w.publisher.PublishPriceAlert(ctx, &events.PriceAlertTriggeredPayload{
			AlertID:      alert.ID,
			ProductID:    alert.ProductID,
			ProductName:  alert.ProductName,
			StoreID:      alert.StoreID,
			CurrentPrice: alert.CurrentPrice,
			TargetPrice:  alert.TargetPrice,
			URL:          quote.URL,
		})
		if err != nil {
			w.logger.Error("failed to publish price alert", "alert_id", alert.ID, "error", err)
		}
	}

	if w.wishlist != nil {
		for _, item := range w.wishlist.List(ctx) {
			quotes, err := w.quotesFor(ctx, item.Product.ID, cache)
			if err != nil {
				continue
			}
			ok, err := w.wishlist.RefreshBestPrice(ctx, item.Product.ID, quotes)
			if err != nil {
				return report, fmt.Errorf("failed to refresh wishlist item %s: %w", item.Product.ID, err)
			}
			if ok {
				report.Refreshed++
			}
		}
	}

	w.logger.Info("price alerts checked",
		"checked", report.Checked,
		"skipped", report.Skipped,
		"triggered", len(report.Triggered),
		"wishlist_refreshed", report.Refreshed,
	)
	return report, nil
}

func (w *Watcher) quotesFor(ctx context.Context, productID string, cache map[string][]models.PriceInfo) ([]models.PriceInfo, error) {
	if quotes, ok := cache[productID]; ok {
		return quotes, nil
	}

	product, ok := w.catalog.Product(productID)
	if !ok {
		return nil, fmt.Errorf("product %s not in catalog", productID)
	}

	quotes, err := w.quotes.Quotes(ctx, product)
	if err != nil {
		return nil, err
	}
	cache[productID] = quotes
	return quotes, nil
}

func findStore(quotes []models.PriceInfo, storeID string) (models.PriceInfo, bool) {
	for _, q := range quotes {
		if q.StoreID == storeID {
			return q, true
		}
	}
	return models.PriceInfo{}, false
}
