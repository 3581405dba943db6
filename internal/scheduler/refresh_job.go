package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/marketpulse/internal/events"
	"github.com/aristath/marketpulse/internal/utils"
	"github.com/rs/zerolog"
)

// Refresher force-refreshes the upstream snapshots
type Refresher interface {
	Refresh(ctx context.Context) ([]string, error)
}

// RefreshJob re-fetches every primary snapshot and announces the outcome on the bus
type RefreshJob struct {
	client  Refresher
	bus     *events.Bus
	timeout time.Duration
	log     zerolog.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(client Refresher, bus *events.Bus, timeout time.Duration, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		client:  client,
		bus:     bus,
		timeout: timeout,
		log:     log.With().Str("job", "snapshot_refresh").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *RefreshJob) Name() string {
	return "snapshot_refresh"
}

// Run executes the refresh job
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	timer := utils.NewTimer("snapshot_refresh", j.log)
	keys, err := j.client.Refresh(ctx)
	duration := timer.StopWithContext(map[string]interface{}{
		"refreshed": len(keys),
	})

	if err != nil {
		j.bus.Publish("scheduler", &events.RefreshFailedData{
			Error:     err.Error(),
			Refreshed: keys,
		})
		return fmt.Errorf("snapshot refresh failed: %w", err)
	}

	j.bus.Publish("scheduler", &events.SnapshotsRefreshedData{
		Keys:       keys,
		DurationMs: duration.Milliseconds(),
	})
	j.log.Info().Int("snapshots", len(keys)).Msg("Snapshots refreshed")
	return nil
}
