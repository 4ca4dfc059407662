package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// Health reports extra status fields, e.g. the storage backend.
	Health func() map[string]interface{}
}

func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:*", "https://localhost:*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{"status": "ok"}
		if cfg.Health != nil {
			for k, v := range cfg.Health() {
				health[k] = v
			}
		}
		h.respondJSON(w, http.StatusOK, health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", h.Search)

		r.Route("/results", func(r chi.Router) {
			r.Get("/", h.ListResults)
			r.Delete("/", h.ClearResults)
			r.Get("/{resultID}", h.GetResult)
			r.Delete("/{resultID}", h.DeleteResult)
			r.Get("/{resultID}/export", h.ExportResult)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.ListHistory)
			r.Delete("/", h.ClearHistory)
			r.Delete("/{itemID}", h.DeleteHistoryItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.ListWishlist)
			r.Post("/", h.AddToWishlist)
			r.Delete("/", h.ClearWishlist)
			r.Patch("/{productID}", h.UpdateWishlistItem)
			r.Delete("/{productID}", h.RemoveFromWishlist)
			r.Post("/{productID}/refresh", h.RefreshWishlistItem)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.ListAlerts)
			r.Put("/", h.UpsertAlert)
			r.Delete("/", h.ClearAlerts)
			r.Delete("/{alertID}", h.DeleteAlert)
			r.Post("/check", h.CheckAlerts)
		})

		r.Get("/stats", h.GetStats)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", h.ListProducts)
			r.Get("/products/{productID}", h.GetProduct)
			r.Get("/products/{productID}/quotes", h.GetQuotes)
			r.Get("/stores", h.ListStores)
			r.Get("/categories", h.ListCategories)
		})

		r.Route("/scans", func(r chi.Router) {
			r.Get("/", h.ListScans)
			r.Post("/", h.StartScan)
			r.Delete("/", h.ClearScans)
			r.Get("/stats", h.GetScanStats)
			r.Get("/profiles", h.ListProfiles)
			r.Get("/{scanID}", h.GetScan)
			r.Delete("/{scanID}", h.DeleteScan)
			r.Post("/{scanID}/pause", h.PauseScan)
			r.Post("/{scanID}/resume", h.ResumeScan)
			r.Post("/{scanID}/stop", h.StopScan)
			r.Get("/{scanID}/export", h.ExportScan)
		})
	})

	return r
}
