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
	"github.com/aristath/marketpulse/internal/modules/market"
	testingpkg "github.com/aristath/marketpulse/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*chi.Mux, *testingpkg.MockMarketData) {
	t.Helper()
	data := testingpkg.NewMockMarketData()
	handler := NewHandler(market.NewMarketService(data, zerolog.Nop()), zerolog.Nop())

	router := chi.NewRouter()
	require.NotPanics(t, func() {
		router.Route("/api", handler.RegisterRoutes)
	})
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

	paths := []string{
		"/api/assets/",
		"/api/assets/AAPL",
		"/api/news",
		"/api/alerts/",
		"/api/alerts/grouped",
		"/api/dashboard",
		"/api/views",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := get(router, path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestHandleListAssets_Query(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/api/assets/?assetType=crypto&sort=price-asc")
	require.Equal(t, http.StatusOK, rec.Code)

	var assets []domain.Asset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assets))
	require.Len(t, assets, 2)
	assert.Equal(t, "ETH", assets[0].Symbol)
	assert.Equal(t, "BTC", assets[1].Symbol)
}

func TestHandleGetAsset_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/api/assets/DOGE")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "DOGE")
}

func TestHandleErrors(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"upstream unavailable", fmt.Errorf("%w: news: timeout", marketapi.ErrUnavailable), http.StatusBadGateway},
		{"other error", errors.New("decode failed"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, data := setupRouter(t)
			data.SetErrorFor(testingpkg.OpNews, tc.err)

			rec := get(router, "/api/news")
			assert.Equal(t, tc.expected, rec.Code)
		})
	}
}

func TestHandleGroupedAlerts(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/api/alerts/grouped?severity=critical")
	require.Equal(t, http.StatusOK, rec.Code)

	var groups market.AlertGroups
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	assert.Equal(t, 1, groups.Total)
	require.Len(t, groups.Severities, 1)
	assert.Equal(t, "critical", groups.Severities[0].Key)
	assert.Empty(t, groups.Other)
}

func TestHandleViews(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/api/views")
	require.Equal(t, http.StatusOK, rec.Code)

	var descriptors []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &descriptors))
	require.NotEmpty(t, descriptors)
	assert.Equal(t, "assets", descriptors[0]["name"])
	assert.Equal(t, "change-desc", descriptors[0]["defaultSort"])
}
