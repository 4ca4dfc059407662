package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/shoplens/internal/models"
)

type UpsertAlertRequest struct {
	ProductID   string  `json:"productId"`
	StoreID     string  `json:"storeId"`
	TargetPrice float64 `json:"targetPrice"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// ListAlerts returns all alerts, or only enabled ones with ?active=true.
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if active, _ := strconv.ParseBool(r.URL.Query().Get("active")); active {
		h.respondJSON(w, http.StatusOK, h.stores.Alerts.ListActive(r.Context()))
		return
	}
	h.respondJSON(w, http.StatusOK, h.stores.Alerts.List(r.Context()))
}

func (h *Handlers) UpsertAlert(w http.ResponseWriter, r *http.Request) {
	var req UpsertAlertRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" || req.StoreID == "" {
		h.respondError(w, http.StatusBadRequest, "productId and storeId are required")
		return
	}
	if req.TargetPrice <= 0 {
		h.respondError(w, http.StatusBadRequest, "targetPrice must be positive")
		return
	}

	product, ok := h.catalog.Product(req.ProductID)
	if !ok {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if _, ok := h.catalog.Retailer(req.StoreID); !ok {
		h.respondError(w, http.StatusNotFound, "store not found")
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	alert, err := h.stores.Alerts.Upsert(r.Context(), models.PriceAlert{
		ProductID:   product.ID,
		ProductName: product.Name,
		StoreID:     req.StoreID,
		TargetPrice: req.TargetPrice,
		Enabled:     enabled,
	})
	if err != nil {
		h.logger.Error("failed to save alert", "error", err, "product_id", req.ProductID)
		h.respondError(w, http.StatusInternalServerError, "failed to save alert")
		return
	}

	h.respondJSON(w, http.StatusOK, alert)
}

func (h *Handlers) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Alerts.Remove(r.Context(), chi.URLParam(r, "alertID")); err != nil {
		h.logger.Error("failed to remove alert", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to remove alert")
		return
	}
	h.respondNoContent(w)
}

func (h *Handlers) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Alerts.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear alerts", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to clear alerts")
		return
	}
	h.respondNoContent(w)
}

// CheckAlerts re-quotes every active alert now.
func (h *Handlers) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	report, err := h.watcher.CheckAll(r.Context())
	if err != nil {
		h.logger.Error("failed to check alerts", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to check alerts")
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}
