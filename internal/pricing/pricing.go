// Package pricing produces retailer price quotes for catalog products and the
// helpers that compare them.
package pricing

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maltedev/shoplens/internal/catalog"
	"github.com/maltedev/shoplens/internal/latency"
	"github.com/maltedev/shoplens/internal/models"
)

type QuoteSource interface {
	Quotes(ctx context.Context, product models.Product) ([]models.PriceInfo, error)
}

var availabilityOptions = []models.Availability{
	models.InStock, models.InStock, models.InStock, models.LimitedStock, models.OutOfStock,
}

// Simulated quotes every retailer that stocks a product at up to 15% either side
// of its base price.
type Simulated struct {
	catalog *catalog.Catalog
	delay   *latency.Jitter
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulated(c *catalog.Catalog, delay *latency.Jitter, seed int64) *Simulated {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulated{
		catalog: c,
		delay:   delay,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulated) Quotes(ctx context.Context, product models.Product) ([]models.PriceInfo, error) {
	if err := s.delay.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := product.BasePrice
	if base <= 0 {
		base = s.categoryPrice(product.Category)
	}

	stores := s.catalog.RetailersFor(product)
	quotes := make([]models.PriceInfo, 0, len(stores))
	for _, store := range stores {
		quotes = append(quotes, s.quote(product, store, base))
	}

	SortByTotal(quotes)
	return quotes, nil
}

func (s *Simulated) quote(p models.Product, store models.Retailer, base float64) models.PriceInfo {
	variation := (s.rng.Float64() - 0.5) * 0.3
	price := round2(base * (1 + variation))

	q := models.PriceInfo{
		StoreID:      store.ID,
		StoreName:    store.Name,
		Price:        price,
		Currency:     "USD",
		Availability: availabilityOptions[s.rng.Intn(len(availabilityOptions))],
		URL:          ProductURL(store.ID, p),
		LastUpdated:  s.now(),
	}

	if s.rng.Float64() > 0.6 {
		original := round2(price * 1.2)
		discount := int(math.Round((original - price) / original * 100))
		q.OriginalPrice = &original
		q.Discount = &discount
	}

	switch {
	case !q.IsInStock():
		q.ShippingTime = "Currently unavailable"
	case s.rng.Float64() > 0.5:
		q.ShippingTime = "Free 2-day shipping"
	default:
		q.ShippingCost = round2(s.rng.Float64() * 15)
		q.ShippingTime = fmt.Sprintf("%d business days", 1+s.rng.Intn(7))
	}

	return q
}

func (s *Simulated) categoryPrice(c models.Category) float64 {
	lo, hi := 50.0, 500.0
	switch c {
	case models.CategoryFashion:
		lo, hi = 30, 200
	case models.CategoryElectronics:
		lo, hi = 100, 2000
	case models.CategoryHome, models.CategoryFurniture:
		lo, hi = 50, 1500
	case models.CategoryBeauty:
		lo, hi = 20, 400
	case models.CategorySports:
		lo, hi = 40, 800
	case models.CategoryBooks:
		lo, hi = 10, 300
	}
	return round2(lo + s.rng.Float64()*(hi-lo))
}

// History simulates 30 days of prices (plus today) for the three cheapest quotes,
// ordered by date.
func (s *Simulated) History(quotes []models.PriceInfo) []models.PricePoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	return History(s.rng, quotes, 30, s.now())
}

// ProductURL builds the retailer link for a product.
func ProductURL(storeID string, p models.Product) string {
	slug := strings.ToLower(strings.Join(strings.Fields(p.Name), "-"))
	return fmt.Sprintf("https://%s.com/product/%s-%s", storeID, slug, p.ID)
}

// SortByTotal orders quotes by price plus shipping, cheapest first.
func SortByTotal(quotes []models.PriceInfo) {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Total() < quotes[j].Total()
	})
}

// BestDeal returns the in-stock quote with the lowest total.
func BestDeal(quotes []models.PriceInfo) (models.PriceInfo, bool) {
	var best models.PriceInfo
	found := false
	for _, q := range quotes {
		if !q.IsInStock() {
			continue
		}
		if !found || q.Total() < best.Total() {
			best = q
			found = true
		}
	}
	return best, found
}

// Savings is the spread between the most and least expensive in-stock totals,
// rounded to cents. Fewer than two in-stock quotes save nothing.
func Savings(quotes []models.PriceInfo) float64 {
	var lo, hi decimal.Decimal
	n := 0
	for _, q := range quotes {
		if !q.IsInStock() {
			continue
		}
		total := decimal.NewFromFloat(q.Price).Add(decimal.NewFromFloat(q.ShippingCost))
		if n == 0 || total.LessThan(lo) {
			lo = total
		}
		if n == 0 || total.GreaterThan(hi) {
			hi = total
		}
		n++
	}
	if n < 2 {
		return 0
	}
	return hi.Sub(lo).Round(2).InexactFloat64()
}

// History fluctuates each of the three cheapest quotes by up to 7.5% per day for
// the given number of days before now.
func History(rng *rand.Rand, quotes []models.PriceInfo, days int, now time.Time) []models.PricePoint {
	sorted := append([]models.PriceInfo(nil), quotes...)
	SortByTotal(sorted)
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	points := make([]models.PricePoint, 0, len(sorted)*(days+1))
	for _, q := range sorted {
		for i := days; i >= 0; i-- {
			fluctuation := 1 + (rng.Float64()*0.15 - 0.075)
			points = append(points, models.PricePoint{
				Date:    now.AddDate(0, 0, -i).Format("2006-01-02"),
				Price:   round2(q.Price * fluctuation),
				StoreID: q.StoreID,
			})
		}
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
