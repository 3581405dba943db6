package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.HandleGetPortfolio)              // Headline and holdings
		r.Get("/trend", h.HandleGetTrend)             // Reconstructed value curve
		r.Get("/allocation", h.HandleGetAllocation)   // Allocation breakdown
		r.Get("/performance", h.HandleGetPerformance) // Allocation with best/worst performers
		r.Get("/alignment", h.HandleGetAlignment)     // History alignment diagnostics
	})
}
