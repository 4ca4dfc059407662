package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shoplens/internal/kv"
	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/persist"
)

func inStock(price, shipping float64) models.PriceInfo {
	return models.PriceInfo{Price: price, ShippingCost: shipping, Availability: models.InStock}
}

func TestAverageSavings(t *testing.T) {
	tests := []struct {
		name    string
		results []models.SearchResult
		want    float64
	}{
		{
			name:    "no results",
			results: nil,
			want:    0,
		},
		{
			name: "single result with shipping",
			results: []models.SearchResult{
				{Prices: []models.PriceInfo{inStock(100, 0), inStock(80, 5)}},
			},
			want: 15,
		},
		{
			name: "result with one in-stock quote counts as zero",
			results: []models.SearchResult{
				{Prices: []models.PriceInfo{inStock(100, 0), inStock(80, 5)}},
				{Prices: []models.PriceInfo{inStock(50, 0), {Price: 10, Availability: models.OutOfStock}}},
			},
			want: 7.5,
		},
		{
			name: "rounds to cents",
			results: []models.SearchResult{
				{Prices: []models.PriceInfo{inStock(10, 0), inStock(11, 0)}},
				{Prices: nil},
				{Prices: nil},
			},
			want: 0.33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageSavings(tt.results))
		})
	}
}

func TestCompute(t *testing.T) {
	ctx := context.Background()
	stores := persist.NewStores(kv.NewMemory(), persist.Limits{}, nil)

	require.NoError(t, stores.History.Append(ctx, models.SearchHistoryItem{ResultCount: 4}))
	require.NoError(t, stores.History.Append(ctx, models.SearchHistoryItem{ResultCount: 6}))

	_, err := stores.Results.Save(ctx, models.SearchResult{Prices: []models.PriceInfo{inStock(100, 0), inStock(80, 5)}})
	require.NoError(t, err)

	_, err = stores.Wishlist.Add(ctx, models.WishlistItem{Product: models.Product{ID: "p1"}, AlertEnabled: true})
	require.NoError(t, err)
	_, err = stores.Wishlist.Add(ctx, models.WishlistItem{Product: models.Product{ID: "p2"}})
	require.NoError(t, err)

	_, err = stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "p1", StoreID: "amazon", Enabled: true})
	require.NoError(t, err)
	_, err = stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "p1", StoreID: "ebay", Enabled: false})
	require.NoError(t, err)

	src := Sources{
		History:  stores.History,
		Results:  stores.Results,
		Wishlist: stores.Wishlist,
		Alerts:   stores.Alerts,
	}

	got := Compute(ctx, src)
	assert.Equal(t, Statistics{
		TotalSearches:      2,
		TotalProductsFound: 10,
		AverageSavings:     15,
		WishlistItems:      2,
		PriceAlertsActive:  1,
	}, got)

	require.NoError(t, stores.Wishlist.Clear(ctx))
	assert.Equal(t, 0, Compute(ctx, src).WishlistItems)
}

func TestCompute_EmptyAndNilSources(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, Statistics{}, Compute(ctx, Sources{}))

	stores := persist.NewStores(kv.NewMemory(), persist.Limits{}, nil)
	assert.Equal(t, Statistics{}, Compute(ctx, Sources{
		History:  stores.History,
		Results:  stores.Results,
		Wishlist: stores.Wishlist,
		Alerts:   stores.Alerts,
	}))
}

func TestComputeScans(t *testing.T) {
	scans := []models.ScanResult{
		{
			Status: models.ScanCompleted,
			Vulnerabilities: []models.Vulnerability{
				{Severity: models.SeverityCritical},
				{Severity: models.SeverityHigh},
				{Severity: models.SeverityHigh},
				{Severity: models.SeverityInfo},
			},
		},
		{
			Status:          models.ScanFailed,
			Vulnerabilities: []models.Vulnerability{{Severity: models.SeverityMedium}, {Severity: models.SeverityLow}},
		},
		{Status: models.ScanScanning},
	}

	assert.Equal(t, ScanStatistics{
		TotalScans:           3,
		CompletedScans:       1,
		TotalVulnerabilities: 6,
		CriticalCount:        1,
		HighCount:            2,
		MediumCount:          1,
		LowCount:             1,
		InfoCount:            1,
	}, ComputeScans(scans))

	assert.Equal(t, ScanStatistics{}, ComputeScans(nil))
}
