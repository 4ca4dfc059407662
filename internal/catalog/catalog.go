// Package catalog serves the static product and retailer tables that the simulated
// recognizer and quote source draw from.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/maltedev/shoplens/internal/models"
)

//go:embed products.json
var productsJSON []byte

var retailers = []models.Retailer{
	{ID: "amazon", Name: "Amazon", Rating: 4.5, TrustScore: 95, ShippingInfo: "Free shipping on orders over $25", ReturnPolicy: "30-day return policy"},
	{ID: "ebay", Name: "eBay", Rating: 4.3, TrustScore: 88, ShippingInfo: "Varies by seller", ReturnPolicy: "Seller-specific return policy"},
	{ID: "walmart", Name: "Walmart", Rating: 4.4, TrustScore: 92, ShippingInfo: "Free 2-day shipping on orders over $35", ReturnPolicy: "90-day return policy"},
	{ID: "target", Name: "Target", Rating: 4.6, TrustScore: 93, ShippingInfo: "Free shipping on orders over $35", ReturnPolicy: "90-day return policy"},
	{ID: "bestbuy", Name: "Best Buy", Rating: 4.5, TrustScore: 91, ShippingInfo: "Free shipping on most items", ReturnPolicy: "15-day return policy"},
	{ID: "etsy", Name: "Etsy", Rating: 4.7, TrustScore: 89, ShippingInfo: "Varies by seller", ReturnPolicy: "Seller-specific return policy"},
	{ID: "aliexpress", Name: "AliExpress", Rating: 4.2, TrustScore: 82, ShippingInfo: "Free shipping on most items", ReturnPolicy: "15-day return policy"},
	{ID: "zappos", Name: "Zappos", Rating: 4.8, TrustScore: 96, ShippingInfo: "Free shipping and returns", ReturnPolicy: "365-day return policy"},
	{ID: "wayfair", Name: "Wayfair", Rating: 4.4, TrustScore: 87, ShippingInfo: "Free shipping on orders over $35", ReturnPolicy: "30-day return policy"},
	{ID: "nordstrom", Name: "Nordstrom", Rating: 4.7, TrustScore: 94, ShippingInfo: "Free shipping and returns", ReturnPolicy: "No time limit on returns"},
}

type Catalog struct {
	products  []models.Product
	byID      map[string]int
	retailers []models.Retailer
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded product table.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(productsJSON)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load parses a JSON array of products. Products failing validation are rejected.
func Load(data []byte) (*Catalog, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return New(products, retailers)
}

func New(products []models.Product, stores []models.Retailer) (*Catalog, error) {
	c := &Catalog{
		products:  products,
		byID:      make(map[string]int, len(products)),
		retailers: stores,
	}
	for i := range products {
		if errs := products[i].Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("invalid product at index %d: %s", i, strings.Join(errs, ", "))
		}
		if _, dup := c.byID[products[i].ID]; dup {
			return nil, fmt.Errorf("duplicate product id %s", products[i].ID)
		}
		c.byID[products[i].ID] = i
	}
	return c, nil
}

func (c *Catalog) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.Snapshot()
	}
	return out
}

func (c *Catalog) Product(id string) (models.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i].Snapshot(), true
}

func (c *Catalog) ByCategory(category models.Category) []models.Product {
	var out []models.Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p.Snapshot())
		}
	}
	return out
}

// Search matches query case-insensitively against name, brand, description and tags.
func (c *Catalog) Search(query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Products()
	}

	var out []models.Product
	for _, p := range c.products {
		if matches(p, q) {
			out = append(out, p.Snapshot())
		}
	}
	return out
}

func matches(p models.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Brand), q) ||
		strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Random returns up to n distinct products in random order.
func (c *Catalog) Random(rng *rand.Rand, n int) []models.Product {
	idx := rng.Perm(len(c.products))
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]models.Product, 0, n)
	for _, i := range idx[:n] {
		out = append(out, c.products[i].Snapshot())
	}
	return out
}

func (c *Catalog) Categories() []models.Category {
	seen := make(map[models.Category]bool)
	var out []models.Category
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

func (c *Catalog) Retailers() []models.Retailer {
	return append([]models.Retailer(nil), c.retailers...)
}

func (c *Catalog) Retailer(id string) (models.Retailer, bool) {
	for _, r := range c.retailers {
		if r.ID == id {
			return r, true
		}
	}
	return models.Retailer{}, false
}

// RetailersFor returns the retailers that stock p, in the product's order.
// Unknown ids are skipped; a product without store ids is offered everywhere.
func (c *Catalog) RetailersFor(p models.Product) []models.Retailer {
	if len(p.StoreIDs) == 0 {
		return c.Retailers()
	}
	out := make([]models.Retailer, 0, len(p.StoreIDs))
	for _, id := range p.StoreIDs {
		if r, ok := c.Retailer(id); ok {
			out = append(out, r)
		}
	}
	return out
}
