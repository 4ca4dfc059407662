package models

import (
	"time"
)

type Category string

const (
	CategoryFashion     Category = "Fashion"
	CategoryElectronics Category = "Electronics"
	CategoryHome        Category = "Home & Living"
	CategoryBeauty      Category = "Beauty"
	CategorySports      Category = "Sports"
	CategoryAccessories Category = "Accessories"
	CategoryFurniture   Category = "Furniture"
	CategoryToys        Category = "Toys"
	CategoryBooks       Category = "Books"
)

type Availability string

const (
	InStock      Availability = "In Stock"
	LimitedStock Availability = "Limited Stock"
	OutOfStock   Availability = "Out of Stock"
	PreOrder     Availability = "Pre-Order"
)

type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand"`
	Category    Category          `json:"category"`
	Description string            `json:"description"`
	Images      []string          `json:"images"`
	Rating      float64           `json:"rating,omitempty"`
	ReviewCount int               `json:"reviewCount,omitempty"`
	BasePrice   float64           `json:"basePrice,omitempty"`
	StoreIDs    []string          `json:"storeIds,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Retailer is a store that quotes prices for catalog products.
type Retailer struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	TrustScore   int     `json:"trustScore"`
	ShippingInfo string  `json:"shippingInfo"`
	ReturnPolicy string  `json:"returnPolicy"`
}

type PriceInfo struct {
	StoreID       string       `json:"storeId"`
	StoreName     string       `json:"storeName"`
	Price         float64      `json:"price"`
	OriginalPrice *float64     `json:"originalPrice,omitempty"`
	Discount      *int         `json:"discount,omitempty"`
	Currency      string       `json:"currency"`
	Availability  Availability `json:"availability"`
	ShippingCost  float64      `json:"shippingCost"`
	ShippingTime  string       `json:"shippingTime"`
	URL           string       `json:"url"`
	LastUpdated   time.Time    `json:"lastUpdated"`
}

// Total is the price a buyer actually pays, shipping included.
func (p PriceInfo) Total() float64 {
	return p.Price + p.ShippingCost
}

func (p PriceInfo) IsInStock() bool {
	return p.Availability == InStock
}

type PricePoint struct {
	Date    string  `json:"date"`
	Price   float64 `json:"price"`
	StoreID string  `json:"storeId"`
}

type ProductMatch struct {
	Product          Product `json:"product"`
	Confidence       float64 `json:"confidence"`
	VisualSimilarity float64 `json:"visualSimilarity"`
	MatchReason      string  `json:"matchReason"`
}

// Snapshot returns a deep copy of the product, safe to store alongside other records.
func (p Product) Snapshot() Product {
	cp := p
	if p.Images != nil {
		cp.Images = append([]string(nil), p.Images...)
	}
	if p.StoreIDs != nil {
		cp.StoreIDs = append([]string(nil), p.StoreIDs...)
	}
	if p.Tags != nil {
		cp.Tags = append([]string(nil), p.Tags...)
	}
	if p.Attributes != nil {
		cp.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			cp.Attributes[k] = v
		}
	}
	return cp
}

func (p *Product) Validate() []string {
	var errors []string

	if p.ID == "" {
		errors = append(errors, "ID is required")
	}

	if p.Name == "" {
		errors = append(errors, "Name is required")
	}

	return errors
}
