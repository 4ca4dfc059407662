package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/shoplens/internal/models"
)

type AddWishlistRequest struct {
	ProductID    string   `json:"productId"`
	TargetPrice  *float64 `json:"targetPrice,omitempty"`
	AlertEnabled bool     `json:"alertEnabled"`
}

func (h *Handlers) ListWishlist(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.stores.Wishlist.List(r.Context()))
}

// AddToWishlist snapshots the catalog product and quotes it once for the best price.
func (h *Handlers) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req AddWishlistRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		h.respondError(w, http.StatusBadRequest, "productId is required")
		return
	}

	product, ok := h.catalog.Product(req.ProductID)
	if !ok {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}

	added, err := h.stores.Wishlist.Add(r.Context(), models.WishlistItem{
		Product:      product,
		TargetPrice:  req.TargetPrice,
		AlertEnabled: req.AlertEnabled,
	})
	if err != nil {
		h.logger.Error("failed to add to wishlist", "error", err, "product_id", req.ProductID)
		h.respondError(w, http.StatusInternalServerError, "failed to add to wishlist")
		return
	}
	if !added {
		h.respondError(w, http.StatusConflict, "product already in wishlist")
		return
	}

	if quotes, err := h.quotes.Quotes(r.Context(), product); err != nil {
		h.logger.Warn("failed to quote wishlist item", "error", err, "product_id", product.ID)
	} else if _, err := h.stores.Wishlist.RefreshBestPrice(r.Context(), product.ID, quotes); err != nil {
		h.logger.Warn("failed to refresh best price", "error", err, "product_id", product.ID)
	}

	h.respondJSON(w, http.StatusCreated, h.findWishlistItem(r, product.ID))
}

func (h *Handlers) UpdateWishlistItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var update models.WishlistUpdate
	if !h.decodeJSON(w, r, &update) {
		return
	}

	found, err := h.stores.Wishlist.Update(r.Context(), productID, update)
	if err != nil {
		h.logger.Error("failed to update wishlist item", "error", err, "product_id", productID)
		h.respondError(w, http.StatusInternalServerError, "failed to update wishlist item")
		return
	}
	if !found {
		h.respondError(w, http.StatusNotFound, "product not in wishlist")
		return
	}

	h.respondJSON(w, http.StatusOK, h.findWishlistItem(r, productID))
}

func (h *Handlers) RefreshWishlistItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if !h.stores.Wishlist.Contains(r.Context(), productID) {
		h.respondError(w, http.StatusNotFound, "product not in wishlist")
		return
	}

	product, ok := h.catalog.Product(productID)
	if !ok {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}

	quotes, err := h.quotes.Quotes(r.Context(), product)
	if err != nil {
		h.logger.Error("failed to fetch quotes", "error", err, "product_id", productID)
		h.respondError(w, http.StatusBadGateway, "failed to fetch quotes")
		return
	}
	if _, err := h.stores.Wishlist.RefreshBestPrice(r.Context(), productID, quotes); err != nil {
		h.logger.Error("failed to refresh best price", "error", err, "product_id", productID)
		h.respondError(w, http.StatusInternalServerError, "failed to refresh best price")
		return
	}

	h.respondJSON(w, http.StatusOK, h.findWishlistItem(r, productID))
}

func (h *Handlers) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Wishlist.Remove(r.Context(), chi.URLParam(r, "productID")); err != nil {
		h.logger.Error("failed to remove from wishlist", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to remove from wishlist")
		return
	}
	h.respondNoContent(w)
}

func (h *Handlers) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Wishlist.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear wishlist", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to clear wishlist")
		return
	}
	h.respondNoContent(w)
}

func (h *Handlers) findWishlistItem(r *http.Request, productID string) *models.WishlistItem {
	for _, it := range h.stores.Wishlist.List(r.Context()) {
		if it.Product.ID == productID {
			return &it
		}
	}
	return nil
}
