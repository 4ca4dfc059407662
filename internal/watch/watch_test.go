package watch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shoplens/internal/catalog"
	"github.com/maltedev/shoplens/internal/events"
	"github.com/maltedev/shoplens/internal/kv"
	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/persist"
)

type fixedQuotes struct {
	quotes map[string][]models.PriceInfo
	err    error
	calls  int
}

func (f *fixedQuotes) Quotes(_ context.Context, p models.Product) ([]models.PriceInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes[p.ID], nil
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishPriceAlert(ctx context.Context, payload *events.PriceAlertTriggeredPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func setup(t *testing.T, quotes *fixedQuotes) (*Watcher, *persist.Stores, *MockPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	stores := persist.NewStores(kv.NewMemory(), persist.Limits{}, logger)
	pub := new(MockPublisher)

	w := New(stores.Alerts, stores.Wishlist, catalog.Default(), quotes, pub, logger)
	w.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return w, stores, pub
}

func TestCheckAll_TriggersAndPublishes(t *testing.T) {
	ctx := context.Background()
	quotes := &fixedQuotes{quotes: map[string][]models.PriceInfo{
		"prod-001": {
			{StoreID: "amazon", StoreName: "Amazon", Price: 75, Availability: models.InStock, URL: "https://amazon.com/product/x"},
			{StoreID: "zappos", StoreName: "Zappos", Price: 95, Availability: models.InStock},
		},
	}}
	w, stores, pub := setup(t, quotes)

	hit, err := stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "amazon", TargetPrice: 80, Enabled: true})
	require.NoError(t, err)
	_, err = stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "zappos", TargetPrice: 80, Enabled: true})
	require.NoError(t, err)
	_, err = stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "target", TargetPrice: 80, Enabled: false})
	require.NoError(t, err)

	pub.On("PublishPriceAlert", ctx, mock.MatchedBy(func(p *events.PriceAlertTriggeredPayload) bool {
		return p.AlertID == hit.ID && p.CurrentPrice == 75 && p.TargetPrice == 80 && p.URL == "https://amazon.com/product/x"
	})).Return(nil).Once()

	report, err := w.CheckAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	require.Len(t, report.Triggered, 1)
	assert.Equal(t, hit.ID, report.Triggered[0].ID)
	assert.Equal(t, 1, quotes.calls)
	pub.AssertExpectations(t)

	for _, a := range stores.Alerts.List(ctx) {
		if !a.Enabled {
			assert.Nil(t, a.LastChecked)
			continue
		}
		require.NotNil(t, a.LastChecked)
		assert.Equal(t, 2026, a.LastChecked.Year())
	}
	assert.Len(t, stores.Alerts.List(ctx), 3)
}

func TestCheckAll_SkipsUnknownProductAndStore(t *testing.T) {
	ctx := context.Background()
	quotes := &fixedQuotes{quotes: map[string][]models.PriceInfo{
		"prod-001": {{StoreID: "amazon", Price: 120, Availability: models.InStock}},
	}}
	w, stores, pub := setup(t, quotes)

	_, err := stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "missing", StoreID: "amazon", TargetPrice: 10, Enabled: true})
	require.NoError(t, err)
	_, err = stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "ebay", TargetPrice: 10, Enabled: true})
	require.NoError(t, err)
	_, err = stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "amazon", TargetPrice: 100, Enabled: true})
	require.NoError(t, err)

	report, err := w.CheckAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 2, report.Skipped)
	assert.Empty(t, report.Triggered)
	pub.AssertNotCalled(t, "PublishPriceAlert", mock.Anything, mock.Anything)
}

func TestCheckAll_PublishErrorIsLogged(t *testing.T) {
	ctx := context.Background()
	quotes := &fixedQuotes{quotes: map[string][]models.PriceInfo{
		"prod-001": {{StoreID: "amazon", Price: 50, Availability: models.InStock}},
	}}
	w, stores, pub := setup(t, quotes)

	_, err := stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "amazon", TargetPrice: 60, Enabled: true})
	require.NoError(t, err)
	pub.On("PublishPriceAlert", ctx, mock.Anything).Return(errors.New("broker down"))

	report, err := w.CheckAll(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Triggered, 1)
}

func TestCheckAll_RefreshesWishlist(t *testing.T) {
	ctx := context.Background()
	quotes := &fixedQuotes{quotes: map[string][]models.PriceInfo{
		"prod-001": {
			{StoreID: "amazon", StoreName: "Amazon", Price: 80, ShippingCost: 5, Availability: models.InStock},
			{StoreID: "target", StoreName: "Target", Price: 82, Availability: models.InStock},
			{StoreID: "zappos", StoreName: "Zappos", Price: 60, Availability: models.OutOfStock},
		},
	}}
	w, stores, _ := setup(t, quotes)

	p, _ := catalog.Default().Product("prod-001")
	_, err := stores.Wishlist.Add(ctx, models.WishlistItem{Product: p})
	require.NoError(t, err)

	report, err := w.CheckAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Refreshed)

	items := stores.Wishlist.List(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 82.0, items[0].CurrentBestPrice)
	assert.Equal(t, "Target", items[0].CurrentBestStore)
}

func TestCheckAll_QuoteErrorSkips(t *testing.T) {
	ctx := context.Background()
	w, stores, _ := setup(t, &fixedQuotes{err: errors.New("timeout")})

	_, err := stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "amazon", TargetPrice: 60, Enabled: true})
	require.NoError(t, err)

	report, err := w.CheckAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
	assert.Equal(t, 1, report.Skipped)
}

// editingQuotes changes the alert store while a quote is in flight.
type editingQuotes struct {
	fixedQuotes
	during func()
}

func (e *editingQuotes) Quotes(ctx context.Context, p models.Product) ([]models.PriceInfo, error) {
	e.during()
	return e.fixedQuotes.Quotes(ctx, p)
}

func TestCheckAll_ConcurrentUserEdits(t *testing.T) {
	ctx := context.Background()
	prices := map[string][]models.PriceInfo{
		"prod-001": {{StoreID: "amazon", StoreName: "Amazon", Price: 40, Availability: models.InStock}},
	}

	tests := []struct {
		name   string
		edit   func(t *testing.T, stores *persist.Stores, alert models.PriceAlert)
		verify func(t *testing.T, alerts []models.PriceAlert)
	}{
		{
			name: "removed alert stays removed",
			edit: func(t *testing.T, stores *persist.Stores, alert models.PriceAlert) {
				require.NoError(t, stores.Alerts.Remove(ctx, alert.ID))
			},
			verify: func(t *testing.T, alerts []models.PriceAlert) {
				assert.Empty(t, alerts)
			},
		},
		{
			name: "disabled alert keeps new target and flag",
			edit: func(t *testing.T, stores *persist.Stores, alert models.PriceAlert) {
				_, err := stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "amazon", TargetPrice: 10, Enabled: false})
				require.NoError(t, err)
			},
			verify: func(t *testing.T, alerts []models.PriceAlert) {
				require.Len(t, alerts, 1)
				assert.Equal(t, 10.0, alerts[0].TargetPrice)
				assert.False(t, alerts[0].Enabled)
				assert.Nil(t, alerts[0].LastChecked)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes := &editingQuotes{fixedQuotes: fixedQuotes{quotes: prices}}
			w, stores, pub := setup(t, &quotes.fixedQuotes)
			w.quotes = quotes

			alert, err := stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "amazon", TargetPrice: 50, Enabled: true})
			require.NoError(t, err)
			quotes.during = func() { tt.edit(t, stores, alert) }

			report, err := w.CheckAll(ctx)
			require.NoError(t, err)

			assert.Equal(t, 0, report.Checked)
			assert.Equal(t, 1, report.Skipped)
			assert.Empty(t, report.Triggered)
			pub.AssertNotCalled(t, "PublishPriceAlert", mock.Anything, mock.Anything)
			tt.verify(t, stores.Alerts.List(ctx))
		})
	}
}

func TestCheckAll_TargetLoweredMidCheck(t *testing.T) {
	ctx := context.Background()
	quotes := &editingQuotes{fixedQuotes: fixedQuotes{quotes: map[string][]models.PriceInfo{
		"prod-001": {{StoreID: "amazon", Price: 40, Availability: models.InStock}},
	}}}
	w, stores, pub := setup(t, &quotes.fixedQuotes)
	w.quotes = quotes

	_, err := stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "amazon", TargetPrice: 50, Enabled: true})
	require.NoError(t, err)
	quotes.during = func() {
		_, err := stores.Alerts.Upsert(ctx, models.PriceAlert{ProductID: "prod-001", StoreID: "amazon", TargetPrice: 30, Enabled: true})
		require.NoError(t, err)
	}

	report, err := w.CheckAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Empty(t, report.Triggered)
	pub.AssertNotCalled(t, "PublishPriceAlert", mock.Anything, mock.Anything)

	alerts := stores.Alerts.List(ctx)
	require.Len(t, alerts, 1)
	assert.Equal(t, 30.0, alerts[0].TargetPrice)
	assert.Equal(t, 40.0, alerts[0].CurrentPrice)
	require.NotNil(t, alerts[0].LastChecked)
}
