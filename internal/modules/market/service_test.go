package market

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/marketpulse/internal/domain"
	"github.com/aristath/marketpulse/internal/modules/views"
	testingpkg "github.com/aristath/marketpulse/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symbols(assets []domain.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Symbol
	}
	return out
}

func newService() (*MarketService, *testingpkg.MockMarketData) {
	data := testingpkg.NewMockMarketData()
	return NewMarketService(data, zerolog.Nop()), data
}

func TestListAssets(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	testCases := []struct {
		name     string
		query    views.Query
		expected []string
	}{
		{"default sort is change desc", views.Query{}, []string{"TSLA", "BTC", "AAPL", "MSFT", "ETH"}},
		{"crypto only", views.Query{Filter: "crypto"}, []string{"BTC", "ETH"}},
		{"search by name", views.Query{Search: "micro"}, []string{"MSFT"}},
		{"price ascending", views.Query{Filter: "stock", Sort: "price-asc"}, []string{"AAPL", "TSLA", "MSFT"}},
		{"unknown sort falls back", views.Query{Filter: "crypto", Sort: "bogus"}, []string{"BTC", "ETH"}},
		{"unknown filter matches nothing", views.Query{Filter: "bond"}, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assets, err := service.ListAssets(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, symbols(assets))
		})
	}
}

func TestListAssets_UpstreamError(t *testing.T) {
	service, data := newService()
	data.SetErrorFor(testingpkg.OpCrypto, errors.New("down"))

	_, err := service.ListAssets(context.Background(), views.Query{})
	assert.ErrorContains(t, err, "failed to get crypto")
}

func TestAssetDetail(t *testing.T) {
	t.Run("uses history endpoint", func(t *testing.T) {
		service, data := newService()
		data.SetHistory("AAPL", []domain.PricePoint{
			{Timestamp: "t1", Price: 100},
			{Timestamp: "t2", Price: 110},
		})

		detail, err := service.AssetDetail(context.Background(), "aapl")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", detail.Asset.Symbol)
		assert.Len(t, detail.History, 2)
		assert.Equal(t, 2, detail.Summary.Points)
		assert.Equal(t, 10.0, detail.Summary.ChangePercent)
	})

	t.Run("falls back to snapshot history", func(t *testing.T) {
		service, data := newService()
		data.SetErrorFor(testingpkg.OpHistory, errors.New("timeout"))

		detail, err := service.AssetDetail(context.Background(), "BTC")
		require.NoError(t, err)
		assert.Len(t, detail.History, 3)
		assert.Equal(t, 42000.0, detail.Summary.First)
		assert.Equal(t, 43000.0, detail.Summary.Last)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		service, _ := newService()
		_, err := service.AssetDetail(context.Background(), "DOGE")
		assert.ErrorIs(t, err, ErrAssetNotFound)
	})
}

func TestListNews(t *testing.T) {
	service, _ := newService()

	news, err := service.ListNews(context.Background(), views.Query{})
	require.NoError(t, err)
	require.Len(t, news, 4)
	assert.Equal(t, "n2", news[0].ID)
	assert.Equal(t, "n3", news[3].ID)

	news, err = service.ListNews(context.Background(), views.Query{Search: "reuters", Sort: "oldest"})
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "n1", news[0].ID)
	assert.Equal(t, "n4", news[1].ID)

	news, err = service.ListNews(context.Background(), views.Query{Search: "btc"})
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "n3", news[0].ID)
}

func TestListAlerts(t *testing.T) {
	service, _ := newService()

	alerts, err := service.ListAlerts(context.Background(), views.Query{Filter: "high"})
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "a1", alerts[0].ID)
	assert.Equal(t, "a6", alerts[1].ID)
}

func TestGroupedAlerts(t *testing.T) {
	service, _ := newService()

	groups, err := service.GroupedAlerts(context.Background(), views.Query{})
	require.NoError(t, err)
	assert.Equal(t, 6, groups.Total)

	keys := make([]string, len(groups.Severities))
	for i, b := range groups.Severities {
		keys[i] = b.Key
	}
	assert.Equal(t, []string{"critical", "high", "medium", "low"}, keys)
	assert.Len(t, groups.Severities[1].Items, 2)

	require.Len(t, groups.Other, 1)
	assert.Equal(t, "info", groups.Other[0].Key)

	groups, err = service.GroupedAlerts(context.Background(), views.Query{Search: "BTC"})
	require.NoError(t, err)
	assert.Equal(t, 1, groups.Total)
	require.Len(t, groups.Severities, 1)
	assert.Equal(t, "high", groups.Severities[0].Key)
	assert.Empty(t, groups.Other)
}

func TestDashboard(t *testing.T) {
	service, _ := newService()

	d, err := service.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"TSLA", "BTC", "AAPL"}, symbols(d.Gainers))
	assert.Equal(t, []string{"ETH", "MSFT", "AAPL"}, symbols(d.Losers))
	require.Len(t, d.News, 4)
	assert.Equal(t, "n2", d.News[0].ID)
	assert.Len(t, d.Alerts, 5)
	assert.Equal(t, "a2", d.Alerts[0].ID)
	assert.Equal(t, 6, d.AlertCount)
	require.Len(t, d.Events, 3)
	assert.Equal(t, "e1", d.Events[0].ID)
	assert.Equal(t, "e2", d.Events[2].ID)
	assert.Len(t, d.Insights, 2)
	require.NotNil(t, d.Portfolio)
	assert.Equal(t, 3, d.Portfolio.Holdings)
	assert.Empty(t, d.Unavailable)
}

func TestDashboard_DegradesOptionalSections(t *testing.T) {
	service, data := newService()
	data.SetErrorFor(testingpkg.OpNews, errors.New("down"))
	data.SetErrorFor(testingpkg.OpPortfolio, errors.New("down"))

	d, err := service.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"news", "portfolio"}, d.Unavailable)
	assert.Empty(t, d.News)
	assert.NotNil(t, d.News)
	assert.Nil(t, d.Portfolio)
	assert.Len(t, d.Gainers, 3)
}

func TestDashboard_RequiresAssets(t *testing.T) {
	service, data := newService()
	data.SetErrorFor(testingpkg.OpStocks, errors.New("down"))

	_, err := service.Dashboard(context.Background())
	assert.Error(t, err)
}

func TestViews(t *testing.T) {
	service, _ := newService()
	descriptors := service.Views()
	require.Len(t, descriptors, len(views.Registry))
	assert.Equal(t, "assets", descriptors[0].Name)
}
