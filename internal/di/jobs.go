package di

import (
	"fmt"
	"time"

	"github.com/aristath/marketpulse/internal/clientdata"
	"github.com/aristath/marketpulse/internal/config"
	"github.com/aristath/marketpulse/internal/reliability"
	"github.com/aristath/marketpulse/internal/scheduler"
	"github.com/rs/zerolog"
)

const (
	refreshTimeout = 2 * time.Minute
	archiveTimeout = 5 * time.Minute
)

type jobRegistration struct {
	schedule string
	job      scheduler.Job
}

// RegisterJobs creates the scheduler and registers every background job.
// Returns JobInstances for manual triggering.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	sched := scheduler.New(log)
	instances := &JobInstances{
		Refresh:     scheduler.NewRefreshJob(container.Client, container.EventBus, refreshTimeout, log),
		Cleanup:     clientdata.NewCleanupJob(container.Cache, clientdata.ExpiredGrace, log),
		Maintenance: reliability.NewMaintenanceJob(container.CacheDB, cfg.DataDir, log),
	}

	registrations := []jobRegistration{
		{cfg.RefreshSchedule, instances.Refresh},
		{cfg.CleanupSchedule, instances.Cleanup},
		{cfg.MaintenanceSchedule, instances.Maintenance},
	}

	if container.ArchiveService != nil {
		instances.Archive = scheduler.NewArchiveJob(
			container.ArchiveService,
			container.EventBus,
			cfg.Archive.RetentionDays,
			archiveTimeout,
			log,
		)
		registrations = append(registrations, jobRegistration{cfg.Archive.Schedule, instances.Archive})
	}

	for _, reg := range registrations {
		if err := sched.AddJob(reg.schedule, reg.job); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", reg.job.Name(), err)
		}
	}

	container.Scheduler = sched
	return instances, nil
}
