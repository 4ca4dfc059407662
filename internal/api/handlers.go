package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/maltedev/shoplens/internal/catalog"
	"github.com/maltedev/shoplens/internal/persist"
	"github.com/maltedev/shoplens/internal/pricing"
	"github.com/maltedev/shoplens/internal/scanner"
	"github.com/maltedev/shoplens/internal/search"
	"github.com/maltedev/shoplens/internal/watch"
)

// Deps are the services the HTTP handlers call into.
type Deps struct {
	Search  *search.Service
	Stores  *persist.Stores
	Catalog *catalog.Catalog
	Quotes  pricing.QuoteSource
	Scans   *scanner.Manager
	Watcher *watch.Watcher
}

type Handlers struct {
	search  *search.Service
	stores  *persist.Stores
	catalog *catalog.Catalog
	quotes  pricing.QuoteSource
	scans   *scanner.Manager
	watcher *watch.Watcher
	logger  *slog.Logger
}

func NewHandlers(deps Deps, logger *slog.Logger) *Handlers {
	return &Handlers{
		search:  deps.Search,
		stores:  deps.Stores,
		catalog: deps.Catalog,
		quotes:  deps.Quotes,
		scans:   deps.Scans,
		watcher: deps.Watcher,
		logger:  logger.With("component", "api"),
	}
}

func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handlers) respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
