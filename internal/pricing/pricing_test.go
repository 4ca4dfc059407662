package pricing

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shoplens/internal/catalog"
	"github.com/maltedev/shoplens/internal/latency"
	"github.com/maltedev/shoplens/internal/models"
)

func quote(store string, price, shipping float64, availability models.Availability) models.PriceInfo {
	return models.PriceInfo{
		StoreID:      store,
		StoreName:    store,
		Price:        price,
		ShippingCost: shipping,
		Availability: availability,
	}
}

func TestSavings(t *testing.T) {
	tests := []struct {
		name   string
		quotes []models.PriceInfo
		want   float64
	}{
		{
			name:   "empty",
			quotes: nil,
			want:   0,
		},
		{
			name: "shipping counts toward total",
			quotes: []models.PriceInfo{
				quote("a", 100, 0, models.InStock),
				quote("b", 80, 5, models.InStock),
			},
			want: 15,
		},
		{
			name: "single in-stock quote",
			quotes: []models.PriceInfo{
				quote("a", 100, 0, models.InStock),
				quote("b", 50, 0, models.OutOfStock),
			},
			want: 0,
		},
		{
			name: "ignores limited stock",
			quotes: []models.PriceInfo{
				quote("a", 10.10, 0, models.InStock),
				quote("b", 1, 0, models.LimitedStock),
				quote("c", 20.35, 1.2, models.InStock),
			},
			want: 11.45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Savings(tt.quotes))
		})
	}
}

func TestBestDeal(t *testing.T) {
	quotes := []models.PriceInfo{
		quote("a", 50, 10, models.InStock),
		quote("b", 40, 0, models.OutOfStock),
		quote("c", 55, 0, models.InStock),
	}

	best, ok := BestDeal(quotes)
	require.True(t, ok)
	assert.Equal(t, "c", best.StoreID)

	_, ok = BestDeal([]models.PriceInfo{quote("b", 40, 0, models.PreOrder)})
	assert.False(t, ok)
}

func TestSortByTotal(t *testing.T) {
	quotes := []models.PriceInfo{
		quote("a", 50, 10, models.InStock),
		quote("b", 40, 0, models.InStock),
		quote("c", 55, 0, models.InStock),
	}

	SortByTotal(quotes)
	assert.Equal(t, "b", quotes[0].StoreID)
	assert.Equal(t, "c", quotes[1].StoreID)
	assert.Equal(t, "a", quotes[2].StoreID)
}

func TestHistory(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	quotes := []models.PriceInfo{
		quote("a", 100, 0, models.InStock),
		quote("b", 90, 0, models.InStock),
		quote("c", 95, 0, models.InStock),
		quote("d", 200, 0, models.InStock),
	}

	points := History(rand.New(rand.NewSource(1)), quotes, 30, now)
	require.Len(t, points, 3*31)

	assert.Equal(t, "2026-03-01", points[0].Date)
	assert.Equal(t, "2026-03-31", points[len(points)-1].Date)

	for i, p := range points {
		assert.NotEqual(t, "d", p.StoreID)
		if i > 0 {
			assert.LessOrEqual(t, points[i-1].Date, p.Date)
		}
	}
}

func TestSimulated_Quotes(t *testing.T) {
	c := catalog.Default()
	src := NewSimulated(c, latency.None(), 11)

	p, ok := c.Product("prod-001")
	require.True(t, ok)

	quotes, err := src.Quotes(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, quotes, 4)

	for i, q := range quotes {
		assert.Contains(t, p.StoreIDs, q.StoreID)
		assert.InDelta(t, p.BasePrice, q.Price, p.BasePrice*0.15+0.01)
		assert.Equal(t, "USD", q.Currency)
		assert.Contains(t, q.URL, p.ID)
		if !q.IsInStock() {
			assert.Zero(t, q.ShippingCost)
		}
		if q.OriginalPrice != nil {
			assert.Greater(t, *q.OriginalPrice, q.Price)
			require.NotNil(t, q.Discount)
		}
		if i > 0 {
			assert.LessOrEqual(t, quotes[i-1].Total(), q.Total())
		}
	}

	history := src.History(quotes)
	assert.Len(t, history, 3*31)
}

func TestProductURL(t *testing.T) {
	p := models.Product{ID: "prod-010", Name: `4K Smart  TV 55"`}
	assert.Equal(t, `https://bestbuy.com/product/4k-smart-tv-55"-prod-010`, ProductURL("bestbuy", p))
}
