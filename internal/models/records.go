package models

import (
	"time"
)

type SearchResult struct {
	ID              string       `json:"id"`
	Product         Product      `json:"product"`
	Prices          []PriceInfo  `json:"prices"`
	SimilarProducts []Product    `json:"similarProducts"`
	PriceHistory    []PricePoint `json:"priceHistory"`
	Confidence      float64      `json:"confidence"`
	ImageURL        string       `json:"imageUrl,omitempty"`
	Timestamp       time.Time    `json:"timestamp"`
}

// SearchHistoryItem records one completed search. TopMatch is a snapshot taken at
// search time and is never refreshed from the catalog.
type SearchHistoryItem struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	ImageURL    string    `json:"imageUrl"`
	ProductName string    `json:"productName"`
	ResultID    string    `json:"resultId"`
	ResultCount int       `json:"resultCount"`
	TopMatch    *Product  `json:"topMatch,omitempty"`
}

type WishlistItem struct {
	ID               string    `json:"id"`
	Product          Product   `json:"product"`
	AddedAt          time.Time `json:"addedAt"`
	TargetPrice      *float64  `json:"targetPrice,omitempty"`
	AlertEnabled     bool      `json:"alertEnabled"`
	CurrentBestPrice float64   `json:"currentBestPrice"`
	CurrentBestStore string    `json:"currentBestStore"`
}

// WishlistUpdate lists the fields to overwrite on a wishlist item. Nil fields are
// left untouched; ClearTargetPrice removes an existing target.
type WishlistUpdate struct {
	TargetPrice      *float64 `json:"targetPrice,omitempty"`
	ClearTargetPrice bool     `json:"clearTargetPrice,omitempty"`
	AlertEnabled     *bool    `json:"alertEnabled,omitempty"`
	CurrentBestPrice *float64 `json:"currentBestPrice,omitempty"`
	CurrentBestStore *string  `json:"currentBestStore,omitempty"`
}

// Apply merges the update into item.
func (u WishlistUpdate) Apply(item *WishlistItem) {
	if u.ClearTargetPrice {
		item.TargetPrice = nil
	}
	if u.TargetPrice != nil {
		v := *u.TargetPrice
		item.TargetPrice = &v
	}
	if u.AlertEnabled != nil {
		item.AlertEnabled = *u.AlertEnabled
	}
	if u.CurrentBestPrice != nil {
		item.CurrentBestPrice = *u.CurrentBestPrice
	}
	if u.CurrentBestStore != nil {
		item.CurrentBestStore = *u.CurrentBestStore
	}
}

// PriceAlert is identified by the (ProductID, StoreID) pair.
type PriceAlert struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"productId"`
	ProductName  string     `json:"productName,omitempty"`
	StoreID      string     `json:"storeId"`
	CurrentPrice float64    `json:"currentPrice"`
	TargetPrice  float64    `json:"targetPrice"`
	Enabled      bool       `json:"enabled"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastChecked  *time.Time `json:"lastChecked,omitempty"`
}

func (a PriceAlert) SameTarget(other PriceAlert) bool {
	return a.ProductID == other.ProductID && a.StoreID == other.StoreID
}

// Triggered reports whether the current price has reached the target.
func (a PriceAlert) Triggered() bool {
	return a.Enabled && a.CurrentPrice > 0 && a.CurrentPrice <= a.TargetPrice
}
