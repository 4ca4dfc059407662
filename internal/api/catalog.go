package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/pricing"
	"github.com/maltedev/shoplens/internal/stats"
)

type QuotesResponse struct {
	Product models.Product     `json:"product"`
	Prices  []models.PriceInfo `json:"prices"`
	Best    *models.PriceInfo  `json:"best,omitempty"`
	Savings float64            `json:"savings"`
}

// ListProducts supports ?q= for text search and ?category= to filter.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Search(r.URL.Query().Get("q"))

	if category := r.URL.Query().Get("category"); category != "" {
		filtered := make([]models.Product, 0, len(products))
		for _, p := range products {
			if string(p.Category) == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	if products == nil {
		products = []models.Product{}
	}
	h.respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.catalog.Product(chi.URLParam(r, "productID"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}
	h.respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) GetQuotes(w http.ResponseWriter, r *http.Request) {
	product, ok := h.catalog.Product(chi.URLParam(r, "productID"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}

	quotes, err := h.quotes.Quotes(r.Context(), product)
	if err != nil {
		h.logger.Error("failed to fetch quotes", "error", err, "product_id", product.ID)
		h.respondError(w, http.StatusBadGateway, "failed to fetch quotes")
		return
	}
	pricing.SortByTotal(quotes)

	resp := QuotesResponse{
		Product: product,
		Prices:  quotes,
		Savings: pricing.Savings(quotes),
	}
	if best, ok := pricing.BestDeal(quotes); ok {
		resp.Best = &best
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ListStores(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.catalog.Retailers())
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.catalog.Categories())
}

// GetStats handles statistics retrieval
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, stats.Compute(r.Context(), stats.Sources{
		History:  h.stores.History,
		Results:  h.stores.Results,
		Wishlist: h.stores.Wishlist,
		Alerts:   h.stores.Alerts,
	}))
}
