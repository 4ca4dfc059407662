package catalog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shoplens/internal/models"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Len(t, c.Products(), 50)
	assert.Len(t, c.Retailers(), 10)

	p, ok := c.Product("prod-001")
	require.True(t, ok)
	assert.Equal(t, "Classic White Sneakers", p.Name)
	assert.Equal(t, "Nike", p.Brand)
	assert.Equal(t, models.CategoryFashion, p.Category)
	assert.Equal(t, 89.99, p.BasePrice)
	assert.Equal(t, []string{"amazon", "zappos", "nordstrom", "target"}, p.StoreIDs)
}

func TestProduct_ReturnsCopy(t *testing.T) {
	c := Default()

	p, ok := c.Product("prod-001")
	require.True(t, ok)
	p.Tags[0] = "changed"
	p.Attributes["color"] = "Black"

	again, _ := c.Product("prod-001")
	assert.Equal(t, "sneakers", again.Tags[0])
	assert.Equal(t, "White", again.Attributes["color"])
}

func TestSearch(t *testing.T) {
	c := Default()

	tests := []struct {
		name    string
		query   string
		wantID  string
		wantMin int
	}{
		{name: "by name", query: "sneakers", wantID: "prod-001", wantMin: 1},
		{name: "by brand case-insensitive", query: "DYSON", wantID: "prod-013", wantMin: 2},
		{name: "by tag", query: "noise-cancelling", wantID: "prod-006", wantMin: 1},
		{name: "empty query returns all", query: "  ", wantID: "prod-050", wantMin: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.query)
			assert.GreaterOrEqual(t, len(got), tt.wantMin)

			ids := make([]string, len(got))
			for i, p := range got {
				ids[i] = p.ID
			}
			assert.Contains(t, ids, tt.wantID)
		})
	}

	assert.Empty(t, c.Search("no-such-product-anywhere"))
}

func TestByCategory(t *testing.T) {
	c := Default()

	for _, p := range c.ByCategory(models.CategoryElectronics) {
		assert.Equal(t, models.CategoryElectronics, p.Category)
	}
	assert.Len(t, c.ByCategory(models.CategoryElectronics), 8)
	assert.Len(t, c.Categories(), 9)
}

func TestRandom(t *testing.T) {
	c := Default()
	rng := rand.New(rand.NewSource(1))

	got := c.Random(rng, 5)
	require.Len(t, got, 5)

	seen := map[string]bool{}
	for _, p := range got {
		assert.False(t, seen[p.ID], "duplicate %s", p.ID)
		seen[p.ID] = true
	}

	assert.Len(t, c.Random(rng, 500), 50)
}

func TestRetailersFor(t *testing.T) {
	c := Default()

	p, _ := c.Product("prod-001")
	stores := c.RetailersFor(p)
	require.Len(t, stores, 4)
	assert.Equal(t, "Amazon", stores[0].Name)
	assert.Equal(t, "Zappos", stores[1].Name)

	assert.Len(t, c.RetailersFor(models.Product{ID: "x", Name: "x"}), 10)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load([]byte(`not json`))
	assert.Error(t, err)

	_, err = Load([]byte(`[{"id":"a","name":"A"},{"id":"a","name":"B"}]`))
	assert.Error(t, err)

	_, err = Load([]byte(`[{"id":"","name":"A"}]`))
	assert.Error(t, err)
}
