package testing

import (
	"github.com/aristath/marketpulse/internal/domain"
)

// FixtureTimestamps are the aligned history timestamps used by the fixtures
var FixtureTimestamps = []string{
	"2024-01-01T00:00:00Z",
	"2024-01-02T00:00:00Z",
	"2024-01-03T00:00:00Z",
}

func history(prices ...float64) []domain.PricePoint {
	out := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = domain.PricePoint{Timestamp: FixtureTimestamps[i], Price: p}
	}
	return out
}

// NewStockFixtures returns a set of test stocks with aligned histories
func NewStockFixtures() []domain.Asset {
	return []domain.Asset{
		{
			Symbol:        "AAPL",
			Name:          "Apple Inc.",
			AssetType:     domain.AssetTypeStock,
			CurrentPrice:  190,
			ChangePercent: 1.2,
			ChangeAmount:  2.25,
			Volume:        52_000_000,
			MarketCap:     2.9e12,
			PriceHistory:  history(180, 185, 190),
		},
		{
			Symbol:        "MSFT",
			Name:          "Microsoft Corporation",
			AssetType:     domain.AssetTypeStock,
			CurrentPrice:  410,
			ChangePercent: -0.8,
			ChangeAmount:  -3.3,
			Volume:        21_000_000,
			MarketCap:     3.1e12,
			PriceHistory:  history(400, 405, 410),
		},
		{
			Symbol:        "TSLA",
			Name:          "Tesla, Inc.",
			AssetType:     domain.AssetTypeStock,
			CurrentPrice:  240,
			ChangePercent: 4.5,
			ChangeAmount:  10.3,
			Volume:        98_000_000,
			MarketCap:     7.6e11,
			PriceHistory:  history(250, 230, 240),
		},
	}
}

// NewCryptoFixtures returns a set of test crypto assets with aligned histories
func NewCryptoFixtures() []domain.Asset {
	return []domain.Asset{
		{
			Symbol:        "BTC",
			Name:          "Bitcoin",
			AssetType:     domain.AssetTypeCrypto,
			CurrentPrice:  43000,
			ChangePercent: 2.1,
			ChangeAmount:  880,
			Volume:        2.1e10,
			MarketCap:     8.4e11,
			PriceHistory:  history(42000, 42500, 43000),
		},
		{
			Symbol:        "ETH",
			Name:          "Ethereum",
			AssetType:     domain.AssetTypeCrypto,
			CurrentPrice:  2300,
			ChangePercent: -3.4,
			ChangeAmount:  -81,
			Volume:        9.5e9,
			MarketCap:     2.8e11,
			PriceHistory:  history(2400, 2350, 2300),
		},
	}
}

// NewAssetFixtures returns stocks followed by crypto
func NewAssetFixtures() []domain.Asset {
	return append(NewStockFixtures(), NewCryptoFixtures()...)
}

// NewPortfolioFixture returns a portfolio holding AAPL, BTC and ETH.
// Its trend over the fixture histories is 22800, 23100, 23400.
func NewPortfolioFixture() *domain.Portfolio {
	return &domain.Portfolio{
		UserID:             "user-1",
		TotalValue:         24000,
		TotalChange:        800,
		TotalChangePercent: 3.45,
		Assets: []domain.Holding{
			{AssetID: "AAPL", Quantity: 10, AvgBuyPrice: 150, Value: 1900, ChangePercent: 1.2},
			{AssetID: "BTC", Quantity: 0.5, AvgBuyPrice: 30000, Value: 21500, ChangePercent: 2.1},
			{AssetID: "ETH", Quantity: 0, AvgBuyPrice: 2000, Value: 0, ChangePercent: -3.4},
		},
		Watchlist: []string{"MSFT", "TSLA"},
	}
}

// NewPerformanceFixture returns an upstream performance payload for the portfolio fixture
func NewPerformanceFixture() *domain.Performance {
	return &domain.Performance{
		AssetAllocation: []domain.AllocationItem{
			{AssetID: "BTC", Percentage: 91.88, Value: 21500},
			{AssetID: "AAPL", Percentage: 8.12, Value: 1900},
		},
		BestPerformer:  &domain.Performer{AssetID: "BTC", ChangePercent: 2.1, CurrentPrice: 43000},
		WorstPerformer: &domain.Performer{AssetID: "ETH", ChangePercent: -3.4, CurrentPrice: 2300},
	}
}

// NewNewsFixtures returns news items in no particular order
func NewNewsFixtures() []domain.NewsItem {
	return []domain.NewsItem{
		{ID: "n1", Title: "Fed holds rates steady", Category: "macro", Source: "Reuters", Timestamp: "2024-01-02T14:00:00Z"},
		{ID: "n2", Title: "Apple unveils new chip", Category: "technology", Source: "Bloomberg", Timestamp: "2024-01-03T09:30:00Z", AffectedAssets: []string{"AAPL"}},
		{ID: "n3", Title: "Bitcoin ETF inflows surge", Category: "crypto", Source: "CoinDesk", Timestamp: "2024-01-01T08:00:00Z", AffectedAssets: []string{"BTC"}},
		{ID: "n4", Title: "Tesla misses delivery estimates", Category: "earnings", Source: "Reuters", Timestamp: "2024-01-02T21:15:00Z", AffectedAssets: []string{"TSLA"}},
	}
}

// NewAlertFixtures returns alerts covering every canonical severity plus one unknown level
func NewAlertFixtures() []domain.Alert {
	return []domain.Alert{
		{ID: "a1", Message: "ETH dropped 3% in an hour", Severity: domain.SeverityHigh, Timestamp: "2024-01-03T10:00:00Z", Asset: "ETH"},
		{ID: "a2", Message: "Unusual TSLA volume", Severity: domain.SeverityMedium, Timestamp: "2024-01-03T11:00:00Z", Asset: "TSLA"},
		{ID: "a3", Message: "Exchange outage reported", Severity: domain.SeverityCritical, Timestamp: "2024-01-03T09:00:00Z"},
		{ID: "a4", Message: "AAPL crossed 50-day average", Severity: domain.SeverityLow, Timestamp: "2024-01-02T16:00:00Z", Asset: "AAPL"},
		{ID: "a5", Message: "Scheduled maintenance", Severity: "info", Timestamp: "2024-01-01T00:00:00Z"},
		{ID: "a6", Message: "BTC funding rate spike", Severity: domain.SeverityHigh, Timestamp: "2024-01-02T12:00:00Z", Asset: "BTC"},
	}
}

// NewEventFixtures returns upcoming events in no particular order
func NewEventFixtures() []domain.Event {
	return []domain.Event{
		{ID: "e1", Title: "CPI release", Date: "2024-01-11", Type: "macro"},
		{ID: "e2", Title: "AAPL earnings", Date: "2024-02-01", Type: "earnings"},
		{ID: "e3", Title: "FOMC meeting", Date: "2024-01-31", Type: "macro"},
	}
}

// NewInsightFixtures returns upstream insights
func NewInsightFixtures() []domain.Insight {
	return []domain.Insight{
		{ID: "i1", Title: "Tech momentum continues", Confidence: 0.72},
		{ID: "i2", Title: "Crypto volatility elevated", Confidence: 0.64},
	}
}
