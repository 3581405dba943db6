package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/marketpulse/internal/modules/views"
	testingpkg "github.com/aristath/marketpulse/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioService_Overview(t *testing.T) {
	data := testingpkg.NewMockMarketData()
	service := NewPortfolioService(data, zerolog.Nop())

	overview, err := service.Overview(context.Background(), views.Query{Sort: "value-desc"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", overview.UserID)
	require.Len(t, overview.Holdings, 3)
	assert.Equal(t, "BTC", overview.Holdings[0].AssetID)
	assert.Equal(t, "ETH", overview.Holdings[2].AssetID)
	require.NotNil(t, overview.BestPerformer)
	assert.Equal(t, "BTC", overview.BestPerformer.AssetID)
}

func TestPortfolioService_PerformanceDegrades(t *testing.T) {
	data := testingpkg.NewMockMarketData()
	data.SetErrorFor(testingpkg.OpPerformance, errors.New("down"))
	service := NewPortfolioService(data, zerolog.Nop())

	report, err := service.Performance(context.Background())
	require.NoError(t, err)

	// Derived from holding values: 1900, 21500 and 0 out of 23400
	require.Len(t, report.Allocation, 3)
	assert.Equal(t, 8.12, report.Allocation[0].Percentage)
	assert.Equal(t, 91.88, report.Allocation[1].Percentage)
	assert.Equal(t, 0.0, report.Allocation[2].Percentage)

	require.NotNil(t, report.BestPerformer)
	require.NotNil(t, report.WorstPerformer)
	assert.Equal(t, "BTC", report.BestPerformer.AssetID)
	assert.Equal(t, "ETH", report.WorstPerformer.AssetID)
}

func TestPortfolioService_Trend(t *testing.T) {
	data := testingpkg.NewMockMarketData()
	service := NewPortfolioService(data, zerolog.Nop())

	report, err := service.Trend(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, report.Points, 3)
	assert.Equal(t, 23400.0, report.Points[2].Value)
	assert.Empty(t, report.MovingAverage)
	assert.Zero(t, report.Period)

	data.SetErrorFor(testingpkg.OpAssets, errors.New("down"))
	_, err = service.Trend(context.Background(), 0)
	assert.ErrorContains(t, err, "failed to get assets")
}
