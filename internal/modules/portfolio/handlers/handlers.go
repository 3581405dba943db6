// Package handlers provides HTTP handlers for the portfolio views.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aristath/marketpulse/internal/clients/marketapi"
	"github.com/aristath/marketpulse/internal/modules/portfolio"
	"github.com/aristath/marketpulse/internal/modules/views"
	"github.com/rs/zerolog"
)

// maxSMAPeriod bounds the moving average window a client may request
const maxSMAPeriod = 365

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.PortfolioService
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.PortfolioService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetPortfolio returns the portfolio headline with its holdings
// Query: search|q, sort (value-desc, change-desc, change-asc, symbol)
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	q := views.HoldingsView.ParseQuery(r.URL.Query())
	overview, err := h.service.Overview(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, overview)
}

// HandleGetTrend returns the reconstructed portfolio value curve
// Query: sma (optional moving average period)
func (h *Handler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	period := 0
	if raw := r.URL.Query().Get("sma"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSMAPeriod {
			h.writeError(w, http.StatusBadRequest, "sma must be an integer between 1 and 365")
			return
		}
		period = n
	}

	report, err := h.service.Trend(r.Context(), period)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// HandleGetAllocation returns the allocation breakdown
// Query: search|q, sort (percentage-desc, value-desc, symbol)
func (h *Handler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	q := views.AllocationView.ParseQuery(r.URL.Query())
	allocation, err := h.service.Allocation(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, allocation)
}

// HandleGetPerformance returns allocation with best and worst performers
func (h *Handler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Performance(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// HandleGetAlignment reports holdings whose price histories do not line up
func (h *Handler) HandleGetAlignment(w http.ResponseWriter, r *http.Request) {
	issues, err := h.service.Alignment(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if issues == nil {
		issues = []portfolio.Misalignment{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"aligned": len(issues) == 0,
		"issues":  issues,
	})
}

// Helper methods

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, marketapi.ErrUnavailable) {
		h.log.Warn().Err(err).Msg("Upstream unavailable")
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.log.Error().Err(err).Msg("Request failed")
	h.writeError(w, http.StatusInternalServerError, err.Error())
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
