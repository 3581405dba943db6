package clientdata

import (
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob removes snapshots that expired longer than the grace period ago.
type CleanupJob struct {
	repo  *Repository
	grace time.Duration
	log   zerolog.Logger
}

// NewCleanupJob creates a new snapshot cleanup job.
func NewCleanupJob(repo *Repository, grace time.Duration, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:  repo,
		grace: grace,
		log:   log.With().Str("job", "snapshot_cleanup").Logger(),
	}
}

// Run executes the cleanup job.
func (j *CleanupJob) Run() error {
	deleted, err := j.repo.DeleteExpired(j.grace)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired snapshots")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Dur("grace", j.grace).
			Msg("Cleaned up expired snapshots")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "snapshot_cleanup"
}
