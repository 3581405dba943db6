// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/marketpulse/internal/clientdata"
	"github.com/aristath/marketpulse/internal/clients/marketapi"
	"github.com/aristath/marketpulse/internal/database"
	"github.com/aristath/marketpulse/internal/events"
	"github.com/aristath/marketpulse/internal/modules/market"
	"github.com/aristath/marketpulse/internal/modules/portfolio"
	"github.com/aristath/marketpulse/internal/reliability"
	"github.com/aristath/marketpulse/internal/scheduler"
)

// Container holds every long-lived dependency of the application
type Container struct {
	// Databases
	CacheDB *database.DB // Upstream snapshot cache (ephemeral, WAL)

	// Data access
	Cache  *clientdata.Repository // Snapshot cache repository
	Client *marketapi.Client      // Upstream market API, cache-first

	// Services
	EventBus         *events.Bus
	MarketService    *market.MarketService
	PortfolioService *portfolio.PortfolioService
	ArchiveService   *reliability.ArchiveService // nil when archiving is disabled

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	Refresh     scheduler.Job
	Cleanup     scheduler.Job
	Maintenance scheduler.Job
	Archive     scheduler.Job // nil when archiving is disabled
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
