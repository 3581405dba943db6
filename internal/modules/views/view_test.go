package views

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/aristath/marketpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_ResolveSort(t *testing.T) {
	testCases := []struct {
		name     string
		view     View
		input    string
		expected SortKey
	}{
		{"offered key", AssetsView, "price-asc", SortPriceAsc},
		{"empty falls back to default", AssetsView, "", SortChangeDesc},
		{"unknown falls back to default", AssetsView, "bogus", SortChangeDesc},
		{"known but not offered", AssetsView, "newest", SortChangeDesc},
		{"news default", NewsView, "", SortNewest},
		{"alerts keep order by default", AlertsView, "", SortNone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.view.ResolveSort(tc.input))
		})
	}
}

func TestApply_Assets(t *testing.T) {
	got := Apply(AssetsView, sampleAssets(), Query{Filter: "stock", Search: "", Sort: "symbol"})
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols(got))

	got = Apply(AssetsView, sampleAssets(), Query{Filter: All, Search: "e", Sort: ""})
	assert.Equal(t, []string{"ETH", "AAPL"}, symbols(got))
}

func TestApply_NewsNewestFirst(t *testing.T) {
	news := []domain.NewsItem{
		{ID: "a", Category: "macro", Timestamp: "2024-01-01T00:00:00Z"},
		{ID: "b", Category: "crypto", Timestamp: "2024-01-03T00:00:00Z"},
		{ID: "c", Category: "macro", Timestamp: "2024-01-02T00:00:00Z"},
	}

	got := Apply(NewsView, news, Query{Filter: "macro"})
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestGrouped_Alerts(t *testing.T) {
	alerts := []domain.Alert{
		{ID: "1", Severity: domain.SeverityLow, Message: "Volume spike on ETH"},
		{ID: "2", Severity: domain.SeverityCritical, Message: "Exchange halt"},
		{ID: "3", Severity: "notice", Message: "Maintenance window"},
	}

	ordered, rest := Grouped(AlertsView, alerts, Query{Filter: All})
	require.Len(t, ordered, 2)
	assert.Equal(t, "critical", ordered[0].Key)
	assert.Equal(t, "low", ordered[1].Key)
	require.Len(t, rest, 1)
	assert.Equal(t, "notice", rest[0].Key)

	ordered, rest = Grouped(AlertsView, alerts, Query{Search: "halt"})
	require.Len(t, ordered, 1)
	assert.Empty(t, rest)
}

func TestDescribe_MarshalsSortNames(t *testing.T) {
	data, err := json.Marshal(AssetsView.Describe())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"defaultSort":"change-desc"`)
	assert.Contains(t, string(data), `"price-asc"`)
	assert.Contains(t, string(data), `"filterField":"assetType"`)
}

func TestTop(t *testing.T) {
	list := []int{1, 2, 3, 4}
	assert.Equal(t, []int{1, 2}, Top(list, 2))
	assert.Equal(t, list, Top(list, 10))
	assert.Empty(t, Top(list, 0))
}

func TestView_ParseQuery(t *testing.T) {
	testCases := []struct {
		name     string
		view     View
		raw      string
		expected Query
	}{
		{"generic params", AssetsView, "filter=crypto&search=btc&sort=price-asc", Query{Filter: "crypto", Search: "btc", Sort: "price-asc"}},
		{"filter by field name", AlertsView, "severity=high", Query{Filter: "high"}},
		{"generic filter wins", NewsView, "filter=macro&category=crypto", Query{Filter: "macro"}},
		{"q alias for search", NewsView, "q=fed", Query{Search: "fed"}},
		{"view without filter field", AllocationView, "sort=value-desc", Query{Sort: "value-desc"}},
		{"empty", AssetsView, "", Query{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, tc.view.ParseQuery(values))
		})
	}
}
