package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assets", func(r chi.Router) {
		r.Get("/", h.HandleListAssets)       // Stocks and crypto
		r.Get("/{symbol}", h.HandleGetAsset) // Asset detail with history
	})

	r.Get("/news", h.HandleListNews)

	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.HandleListAlerts)
		r.Get("/grouped", h.HandleGroupedAlerts) // Bucketed by severity
	})

	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/views", h.HandleViews) // Supported filter/sort identifiers
}
