// Package portfolio provides the portfolio value trend, allocation and performer views.
package portfolio

import (
	"context"
	"fmt"

	"github.com/aristath/marketpulse/internal/domain"
	"github.com/aristath/marketpulse/internal/modules/views"
	"github.com/rs/zerolog"
)

// MarketData is the upstream data the portfolio views are derived from
type MarketData interface {
	GetPortfolio(ctx context.Context) (*domain.Portfolio, error)
	GetAssets(ctx context.Context) ([]domain.Asset, error)
	GetPerformance(ctx context.Context) (*domain.Performance, error)
}

// Overview is the portfolio headline with its holdings
type Overview struct {
	UserID             string            `json:"userId"`
	TotalValue         float64           `json:"totalValue"`
	TotalChange        float64           `json:"totalChange"`
	TotalChangePercent float64           `json:"totalChangePercent"`
	Holdings           []domain.Holding  `json:"holdings"`
	Watchlist          []string          `json:"watchlist"`
	BestPerformer      *domain.Performer `json:"bestPerformer,omitempty"`
	WorstPerformer     *domain.Performer `json:"worstPerformer,omitempty"`
}

// TrendReport is the value curve with its statistics
type TrendReport struct {
	Points        []domain.TrendPoint `json:"points"`
	Summary       TrendSummary        `json:"summary"`
	MovingAverage []domain.TrendPoint `json:"movingAverage,omitempty"`
	Period        int                 `json:"period,omitempty"`
}

// PerformanceReport is the allocation breakdown with best and worst performers
type PerformanceReport struct {
	Allocation     []AllocationSlice `json:"allocation"`
	BestPerformer  *domain.Performer `json:"bestPerformer,omitempty"`
	WorstPerformer *domain.Performer `json:"worstPerformer,omitempty"`
}

// PortfolioService derives portfolio views from upstream snapshots.
// It holds no state of its own; every call works on fresh snapshots.
type PortfolioService struct {
	data MarketData
	log  zerolog.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(data MarketData, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		data: data,
		log:  log.With().Str("service", "portfolio").Logger(),
	}
}

// Overview returns the portfolio headline with holdings ordered per q
func (s *PortfolioService) Overview(ctx context.Context, q views.Query) (*Overview, error) {
	p, err := s.data.GetPortfolio(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	best, worst := Performers(p, s.performance(ctx))

	watchlist := p.Watchlist
	if watchlist == nil {
		watchlist = []string{}
	}

	return &Overview{
		UserID:             p.UserID,
		TotalValue:         p.TotalValue,
		TotalChange:        p.TotalChange,
		TotalChangePercent: p.TotalChangePercent,
		Holdings:           views.Apply(views.HoldingsView, p.Assets, q),
		Watchlist:          watchlist,
		BestPerformer:      best,
		WorstPerformer:     worst,
	}, nil
}

// Trend returns the reconstructed value curve. A positive smaPeriod adds a
// simple moving average over that many points.
func (s *PortfolioService) Trend(ctx context.Context, smaPeriod int) (*TrendReport, error) {
	p, assets, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}

	trend := ComputeTrend(p, assets)
	report := &TrendReport{
		Points:  trend,
		Summary: Summarize(trend),
	}
	if smaPeriod > 0 {
		report.MovingAverage = MovingAverage(trend, smaPeriod)
		report.Period = smaPeriod
	}

	if issues := CheckAlignment(p, assets); len(issues) > 0 {
		s.log.Warn().
			Int("issues", len(issues)).
			Str("first_asset", issues[0].AssetID).
			Str("first_kind", string(issues[0].Kind)).
			Msg("Price histories are not aligned, trend may mix timestamps")
	}

	return report, nil
}

// Allocation returns the allocation breakdown ordered per q
func (s *PortfolioService) Allocation(ctx context.Context, q views.Query) ([]AllocationSlice, error) {
	p, err := s.data.GetPortfolio(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return views.Apply(views.AllocationView, Allocation(p, s.performance(ctx)), q), nil
}

// Performance returns the allocation breakdown and the best and worst performers
func (s *PortfolioService) Performance(ctx context.Context) (*PerformanceReport, error) {
	p, err := s.data.GetPortfolio(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	perf := s.performance(ctx)
	best, worst := Performers(p, perf)
	return &PerformanceReport{
		Allocation:     Allocation(p, perf),
		BestPerformer:  best,
		WorstPerformer: worst,
	}, nil
}

// Alignment reports holdings whose histories do not line up
func (s *PortfolioService) Alignment(ctx context.Context) ([]Misalignment, error) {
	p, assets, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	return CheckAlignment(p, assets), nil
}

func (s *PortfolioService) snapshots(ctx context.Context) (*domain.Portfolio, []domain.Asset, error) {
	p, err := s.data.GetPortfolio(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	assets, err := s.data.GetAssets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get assets: %w", err)
	}
	return p, assets, nil
}

// performance is optional; without it allocation and performers are derived from holdings
func (s *PortfolioService) performance(ctx context.Context) *domain.Performance {
	perf, err := s.data.GetPerformance(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Performance unavailable, deriving from holdings")
		return nil
	}
	return perf
}
