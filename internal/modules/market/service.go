// Package market provides the asset, news, alert and dashboard views.
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/marketpulse/internal/domain"
	"github.com/aristath/marketpulse/internal/modules/portfolio"
	"github.com/aristath/marketpulse/internal/modules/views"
	"github.com/rs/zerolog"
)

// Dashboard section sizes
const (
	DashboardMovers  = 3
	DashboardNews    = 5
	DashboardAlerts  = 5
	DashboardEvents  = 5
	DashboardInsight = 3
)

// ErrAssetNotFound is returned for symbols neither asset universe knows
var ErrAssetNotFound = errors.New("asset not found")

// MarketData is the upstream data the market views are derived from
type MarketData interface {
	GetStocks(ctx context.Context) ([]domain.Asset, error)
	GetCrypto(ctx context.Context) ([]domain.Asset, error)
	GetAssetHistory(ctx context.Context, symbol string) ([]domain.PricePoint, error)
	GetNews(ctx context.Context) ([]domain.NewsItem, error)
	GetAlerts(ctx context.Context) ([]domain.Alert, error)
	GetUpcomingEvents(ctx context.Context) ([]domain.Event, error)
	GetInsights(ctx context.Context) ([]domain.Insight, error)
	GetPortfolio(ctx context.Context) (*domain.Portfolio, error)
}

// AssetDetail is one asset with its price history and statistics
type AssetDetail struct {
	Asset   domain.Asset           `json:"asset"`
	History []domain.PricePoint    `json:"history"`
	Summary portfolio.TrendSummary `json:"summary"`
}

// AlertGroups is the alert list bucketed by severity. Severities is in
// canonical order; Other holds levels outside the canonical set.
type AlertGroups struct {
	Severities []views.Bucket[domain.Alert] `json:"severities"`
	Other      []views.Bucket[domain.Alert] `json:"other"`
	Total      int                          `json:"total"`
}

// PortfolioHeadline is the portfolio summary shown on the dashboard
type PortfolioHeadline struct {
	TotalValue         float64 `json:"totalValue"`
	TotalChange        float64 `json:"totalChange"`
	TotalChangePercent float64 `json:"totalChangePercent"`
	Holdings           int     `json:"holdings"`
}

// Dashboard is the landing page summary.
// Unavailable names the sections that could not be loaded.
type Dashboard struct {
	Gainers     []domain.Asset     `json:"gainers"`
	Losers      []domain.Asset     `json:"losers"`
	News        []domain.NewsItem  `json:"news"`
	Alerts      []domain.Alert     `json:"alerts"`
	AlertCount  int                `json:"alertCount"`
	Events      []domain.Event     `json:"events"`
	Insights    []domain.Insight   `json:"insights"`
	Portfolio   *PortfolioHeadline `json:"portfolio,omitempty"`
	Unavailable []string           `json:"unavailable,omitempty"`
}

// MarketService composes the market views over upstream snapshots
type MarketService struct {
	data MarketData
	log  zerolog.Logger
}

// NewMarketService creates a new market service
func NewMarketService(data MarketData, log zerolog.Logger) *MarketService {
	return &MarketService{
		data: data,
		log:  log.With().Str("service", "market").Logger(),
	}
}

// ListAssets returns stocks and crypto filtered, searched and sorted per q
func (s *MarketService) ListAssets(ctx context.Context, q views.Query) ([]domain.Asset, error) {
	assets, err := s.assets(ctx)
	if err != nil {
		return nil, err
	}
	return views.Apply(views.AssetsView, assets, q), nil
}

// AssetDetail returns one asset with its history. The history endpoint is
// preferred; the history embedded in the asset snapshot is the fallback.
func (s *MarketService) AssetDetail(ctx context.Context, symbol string) (*AssetDetail, error) {
	assets, err := s.assets(ctx)
	if err != nil {
		return nil, err
	}

	var asset *domain.Asset
	for i := range assets {
		if strings.EqualFold(assets[i].Symbol, symbol) {
			asset = &assets[i]
			break
		}
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, symbol)
	}

	history, err := s.data.GetAssetHistory(ctx, asset.Symbol)
	if err != nil || len(history) == 0 {
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", asset.Symbol).Msg("History unavailable, using snapshot history")
		}
		history = asset.PriceHistory
	}
	if history == nil {
		history = []domain.PricePoint{}
	}

	points := make([]domain.TrendPoint, len(history))
	for i, p := range history {
		points[i] = domain.TrendPoint{Timestamp: p.Timestamp, Value: p.Price}
	}

	return &AssetDetail{
		Asset:   *asset,
		History: history,
		Summary: portfolio.Summarize(points),
	}, nil
}

// ListNews returns news filtered by category, searched and sorted per q
func (s *MarketService) ListNews(ctx context.Context, q views.Query) ([]domain.NewsItem, error) {
	news, err := s.data.GetNews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	return views.Apply(views.NewsView, news, q), nil
}

// ListAlerts returns alerts filtered by severity, searched and sorted per q
func (s *MarketService) ListAlerts(ctx context.Context, q views.Query) ([]domain.Alert, error) {
	alerts, err := s.data.GetAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	return views.Apply(views.AlertsView, alerts, q), nil
}

// GroupedAlerts returns alerts bucketed by severity
func (s *MarketService) GroupedAlerts(ctx context.Context, q views.Query) (*AlertGroups, error) {
	alerts, err := s.data.GetAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}

	ordered, rest := views.Grouped(views.AlertsView, alerts, q)
	total := 0
	for _, b := range ordered {
		total += len(b.Items)
	}
	for _, b := range rest {
		total += len(b.Items)
	}

	return &AlertGroups{Severities: ordered, Other: rest, Total: total}, nil
}

// Dashboard builds the landing page summary. Only the asset universe is
// required; other sections are reported in Unavailable when they fail.
func (s *MarketService) Dashboard(ctx context.Context) (*Dashboard, error) {
	assets, err := s.assets(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Gainers:  views.Top(views.SortBy(assets, views.SortChangeDesc), DashboardMovers),
		Losers:   views.Top(views.SortBy(assets, views.SortChangeAsc), DashboardMovers),
		News:     []domain.NewsItem{},
		Alerts:   []domain.Alert{},
		Events:   []domain.Event{},
		Insights: []domain.Insight{},
	}

	if news, err := s.data.GetNews(ctx); err != nil {
		d.unavailable(s.log, "news", err)
	} else {
		d.News = views.Top(views.SortBy(news, views.SortNewest), DashboardNews)
	}

	if alerts, err := s.data.GetAlerts(ctx); err != nil {
		d.unavailable(s.log, "alerts", err)
	} else {
		d.AlertCount = len(alerts)
		d.Alerts = views.Top(views.SortBy(alerts, views.SortNewest), DashboardAlerts)
	}

	if events, err := s.data.GetUpcomingEvents(ctx); err != nil {
		d.unavailable(s.log, "events", err)
	} else {
		d.Events = views.Top(views.SortBy(events, views.SortOldest), DashboardEvents)
	}

	if insights, err := s.data.GetInsights(ctx); err != nil {
		d.unavailable(s.log, "insights", err)
	} else {
		d.Insights = views.Top(insights, DashboardInsight)
	}

	if p, err := s.data.GetPortfolio(ctx); err != nil {
		d.unavailable(s.log, "portfolio", err)
	} else {
		d.Portfolio = &PortfolioHeadline{
			TotalValue:         p.TotalValue,
			TotalChange:        p.TotalChange,
			TotalChangePercent: p.TotalChangePercent,
			Holdings:           len(p.Assets),
		}
	}

	return d, nil
}

// Views describes every view's filter, search and sort options
func (s *MarketService) Views() []views.Descriptor {
	out := make([]views.Descriptor, len(views.Registry))
	for i, v := range views.Registry {
		out[i] = v.Describe()
	}
	return out
}

// assets merges the stock and crypto universes, stocks first
func (s *MarketService) assets(ctx context.Context) ([]domain.Asset, error) {
	stocks, err := s.data.GetStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stocks: %w", err)
	}
	crypto, err := s.data.GetCrypto(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get crypto: %w", err)
	}

	out := make([]domain.Asset, 0, len(stocks)+len(crypto))
	out = append(out, stocks...)
	return append(out, crypto...), nil
}

func (d *Dashboard) unavailable(log zerolog.Logger, section string, err error) {
	log.Warn().Err(err).Str("section", section).Msg("Dashboard section unavailable")
	d.Unavailable = append(d.Unavailable, section)
}
