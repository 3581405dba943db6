package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/marketpulse/internal/clientdata"
	"github.com/aristath/marketpulse/internal/clients/marketapi"
	"github.com/aristath/marketpulse/internal/config"
	"github.com/aristath/marketpulse/internal/events"
	"github.com/aristath/marketpulse/internal/modules/market"
	"github.com/aristath/marketpulse/internal/modules/portfolio"
	"github.com/aristath/marketpulse/internal/modules/views"
	"github.com/aristath/marketpulse/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeServices creates the cache repository, upstream client and services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.CacheDB == nil {
		return fmt.Errorf("container must have an initialized cache database")
	}

	container.Cache = clientdata.NewRepository(container.CacheDB.Conn())
	container.Client = marketapi.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, container.Cache, log)
	container.EventBus = events.NewBus(log)

	container.MarketService = market.NewMarketService(container.Client, log)
	container.PortfolioService = portfolio.NewPortfolioService(container.Client, log)

	if cfg.Archive != nil && cfg.Archive.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := reliability.NewR2Client(ctx, reliability.R2Config{
			Endpoint:        cfg.Archive.Endpoint,
			Bucket:          cfg.Archive.Bucket,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
			Region:          cfg.Archive.Region,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create archive storage client: %w", err)
		}

		container.ArchiveService = reliability.NewArchiveService(store, log)
		registerArchiveViews(container)
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("View archiving enabled")
	}

	return nil
}

// registerArchiveViews adds the derived views to every archive
func registerArchiveViews(c *Container) {
	archive := c.ArchiveService

	archive.Register("dashboard", func(ctx context.Context) (interface{}, error) {
		return c.MarketService.Dashboard(ctx)
	})
	archive.Register("trend", func(ctx context.Context) (interface{}, error) {
		report, err := c.PortfolioService.Trend(ctx, 0)
		if err != nil {
			return nil, err
		}
		return report.Points, nil
	})
	archive.Register("summary", func(ctx context.Context) (interface{}, error) {
		report, err := c.PortfolioService.Trend(ctx, 0)
		if err != nil {
			return nil, err
		}
		return report.Summary, nil
	})
	archive.Register("allocation", func(ctx context.Context) (interface{}, error) {
		return c.PortfolioService.Allocation(ctx, views.Query{})
	})
	archive.Register("alerts", func(ctx context.Context) (interface{}, error) {
		return c.MarketService.GroupedAlerts(ctx, views.Query{})
	})
}
