// Package handlers provides HTTP handlers for the market views.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/marketpulse/internal/clients/marketapi"
	"github.com/aristath/marketpulse/internal/modules/market"
	"github.com/aristath/marketpulse/internal/modules/views"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles market HTTP requests
type Handler struct {
	service *market.MarketService
	log     zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(service *market.MarketService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleListAssets returns stocks and crypto
// Query: filter|assetType, search|q, sort
func (h *Handler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	q := views.AssetsView.ParseQuery(r.URL.Query())
	assets, err := h.service.ListAssets(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, assets)
}

// HandleGetAsset returns one asset with its history and statistics
func (h *Handler) HandleGetAsset(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	detail, err := h.service.AssetDetail(r.Context(), symbol)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

// HandleListNews returns the news radar
// Query: filter|category, search|q, sort
func (h *Handler) HandleListNews(w http.ResponseWriter, r *http.Request) {
	q := views.NewsView.ParseQuery(r.URL.Query())
	news, err := h.service.ListNews(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, news)
}

// HandleListAlerts returns alerts as a flat list
func (h *Handler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := views.AlertsView.ParseQuery(r.URL.Query())
	alerts, err := h.service.ListAlerts(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, alerts)
}

// HandleGroupedAlerts returns alerts bucketed by severity
func (h *Handler) HandleGroupedAlerts(w http.ResponseWriter, r *http.Request) {
	q := views.AlertsView.ParseQuery(r.URL.Query())
	groups, err := h.service.GroupedAlerts(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, groups)
}

// HandleDashboard returns the landing page summary
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dashboard)
}

// HandleViews returns the filter, search and sort options of every view
func (h *Handler) HandleViews(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Views())
}

// Helper methods

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrAssetNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, marketapi.ErrUnavailable):
		h.log.Warn().Err(err).Msg("Upstream unavailable")
		h.writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.log.Error().Err(err).Msg("Request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
