package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/marketpulse/internal/clients/marketapi"
	"github.com/aristath/marketpulse/internal/domain"
	"github.com/aristath/marketpulse/internal/modules/portfolio"
	testingpkg "github.com/aristath/marketpulse/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*chi.Mux, *testingpkg.MockMarketData) {
	t.Helper()
	data := testingpkg.NewMockMarketData()
	handler := NewHandler(portfolio.NewPortfolioService(data, zerolog.Nop()), zerolog.Nop())

	router := chi.NewRouter()
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
	return router, data
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutes(t *testing.T) {
	router, _ := setupRouter(t)

	testCases := []struct {
		path string
		name string
	}{
		{"/portfolio/", "GetPortfolio"},
		{"/portfolio/trend", "GetTrend"},
		{"/portfolio/allocation", "GetAllocation"},
		{"/portfolio/performance", "GetPerformance"},
		{"/portfolio/alignment", "GetAlignment"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(router, tc.path)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestHandleGetTrend(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/portfolio/trend?sma=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var report portfolio.TrendReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, []domain.TrendPoint{
		{Timestamp: "2024-01-01T00:00:00Z", Value: 22800},
		{Timestamp: "2024-01-02T00:00:00Z", Value: 23100},
		{Timestamp: "2024-01-03T00:00:00Z", Value: 23400},
	}, report.Points)
	assert.Equal(t, 2, report.Period)
	require.Len(t, report.MovingAverage, 2)
	assert.InDelta(t, 22950, report.MovingAverage[0].Value, 0.001)
	assert.Equal(t, 3, report.Summary.Points)
}

func TestHandleGetTrend_InvalidSMA(t *testing.T) {
	router, _ := setupRouter(t)

	for _, raw := range []string{"abc", "0", "-3", "1000"} {
		t.Run(raw, func(t *testing.T) {
			rec := get(router, "/portfolio/trend?sma="+raw)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleGetAllocation_Sort(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/portfolio/allocation?sort=symbol")
	require.Equal(t, http.StatusOK, rec.Code)

	var slices []portfolio.AllocationSlice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slices))
	require.Len(t, slices, 2)
	assert.Equal(t, "AAPL", slices[0].AssetID)
	assert.Equal(t, "BTC", slices[1].AssetID)
	assert.NotEmpty(t, slices[0].Color)
}

func TestHandleGetAlignment(t *testing.T) {
	router, data := setupRouter(t)

	rec := get(router, "/portfolio/alignment")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"aligned":true,"issues":[]}`, rec.Body.String())

	p := testingpkg.NewPortfolioFixture()
	p.Assets = append(p.Assets, domain.Holding{AssetID: "DOGE", Quantity: 100})
	data.SetPortfolio(p)

	rec = get(router, "/portfolio/alignment")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Aligned bool                     `json:"aligned"`
		Issues  []portfolio.Misalignment `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Aligned)
	require.Len(t, body.Issues, 1)
	assert.Equal(t, "DOGE", body.Issues[0].AssetID)
}

func TestHandleErrors(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"upstream unavailable", fmt.Errorf("%w: portfolio: refused", marketapi.ErrUnavailable), http.StatusBadGateway},
		{"other error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, data := setupRouter(t)
			data.SetErrorFor(testingpkg.OpPortfolio, tc.err)

			rec := get(router, "/portfolio/")
			assert.Equal(t, tc.expected, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}
