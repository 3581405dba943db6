package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aristath/marketpulse/internal/domain"
)

// Operation names accepted by MockMarketData.SetErrorFor
const (
	OpStocks      = "stocks"
	OpCrypto      = "crypto"
	OpAssets      = "assets"
	OpHistory     = "history"
	OpNews        = "news"
	OpAlerts      = "alerts"
	OpPortfolio   = "portfolio"
	OpPerformance = "performance"
	OpEvents      = "events"
	OpInsights    = "insights"
)

// MockMarketData is an in-memory stand-in for the upstream market API client.
// It serves whatever was set, and an error set for an operation wins over data.
type MockMarketData struct {
	mu          sync.RWMutex
	stocks      []domain.Asset
	crypto      []domain.Asset
	assets      []domain.Asset
	histories   map[string][]domain.PricePoint
	news        []domain.NewsItem
	alerts      []domain.Alert
	portfolio   *domain.Portfolio
	performance *domain.Performance
	events      []domain.Event
	insights    []domain.Insight
	err         error
	errs        map[string]error
	calls       map[string]int
}

// NewMockMarketData creates a mock loaded with the standard fixtures
func NewMockMarketData() *MockMarketData {
	return &MockMarketData{
		stocks:      NewStockFixtures(),
		crypto:      NewCryptoFixtures(),
		assets:      NewAssetFixtures(),
		histories:   make(map[string][]domain.PricePoint),
		news:        NewNewsFixtures(),
		alerts:      NewAlertFixtures(),
		portfolio:   NewPortfolioFixture(),
		performance: NewPerformanceFixture(),
		events:      NewEventFixtures(),
		insights:    NewInsightFixtures(),
		errs:        make(map[string]error),
		calls:       make(map[string]int),
	}
}

// SetAssets sets the stocks, crypto and combined asset lists from one list
func (m *MockMarketData) SetAssets(assets []domain.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stocks, m.crypto = nil, nil
	for _, a := range assets {
		if a.AssetType == domain.AssetTypeCrypto {
			m.crypto = append(m.crypto, a)
		} else {
			m.stocks = append(m.stocks, a)
		}
	}
	m.assets = assets
}

// SetHistory sets the history returned for symbol
func (m *MockMarketData) SetHistory(symbol string, history []domain.PricePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histories[strings.ToUpper(symbol)] = history
}

// SetNews sets the news to return
func (m *MockMarketData) SetNews(news []domain.NewsItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.news = news
}

// SetAlerts sets the alerts to return
func (m *MockMarketData) SetAlerts(alerts []domain.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = alerts
}

// SetPortfolio sets the portfolio to return
func (m *MockMarketData) SetPortfolio(p *domain.Portfolio) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolio = p
}

// SetPerformance sets the performance payload to return
func (m *MockMarketData) SetPerformance(p *domain.Performance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.performance = p
}

// SetEvents sets the upcoming events to return
func (m *MockMarketData) SetEvents(events []domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = events
}

// SetError sets the error every operation returns
func (m *MockMarketData) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetErrorFor sets the error one operation returns (see the Op constants)
func (m *MockMarketData) SetErrorFor(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[op] = err
}

// Calls returns how many times an operation was invoked
func (m *MockMarketData) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// GetStocks returns the stocks
func (m *MockMarketData) GetStocks(ctx context.Context) ([]domain.Asset, error) {
	if err := m.begin(OpStocks); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stocks, nil
}

// GetCrypto returns the crypto assets
func (m *MockMarketData) GetCrypto(ctx context.Context) ([]domain.Asset, error) {
	if err := m.begin(OpCrypto); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.crypto, nil
}

// GetAssets returns the combined asset list
func (m *MockMarketData) GetAssets(ctx context.Context) ([]domain.Asset, error) {
	if err := m.begin(OpAssets); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assets, nil
}

// GetAssetHistory returns the history set for symbol, else the one embedded in the asset
func (m *MockMarketData) GetAssetHistory(ctx context.Context, symbol string) ([]domain.PricePoint, error) {
	if err := m.begin(OpHistory); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.histories[strings.ToUpper(symbol)]; ok {
		return h, nil
	}
	for _, a := range m.assets {
		if strings.EqualFold(a.Symbol, symbol) {
			return a.PriceHistory, nil
		}
	}
	return nil, fmt.Errorf("history for %s not found", symbol)
}

// GetNews returns the news
func (m *MockMarketData) GetNews(ctx context.Context) ([]domain.NewsItem, error) {
	if err := m.begin(OpNews); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.news, nil
}

// GetAlerts returns the alerts
func (m *MockMarketData) GetAlerts(ctx context.Context) ([]domain.Alert, error) {
	if err := m.begin(OpAlerts); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.alerts, nil
}

// GetPortfolio returns the portfolio
func (m *MockMarketData) GetPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	if err := m.begin(OpPortfolio); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.portfolio, nil
}

// GetPerformance returns the performance payload
func (m *MockMarketData) GetPerformance(ctx context.Context) (*domain.Performance, error) {
	if err := m.begin(OpPerformance); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.performance, nil
}

// GetUpcomingEvents returns the upcoming events
func (m *MockMarketData) GetUpcomingEvents(ctx context.Context) ([]domain.Event, error) {
	if err := m.begin(OpEvents); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.events, nil
}

// GetInsights returns the insights
func (m *MockMarketData) GetInsights(ctx context.Context) ([]domain.Insight, error) {
	if err := m.begin(OpInsights); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.insights, nil
}

// begin counts the call and returns the configured error, if any
func (m *MockMarketData) begin(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	if err, ok := m.errs[op]; ok && err != nil {
		return err
	}
	return m.err
}
