package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/marketpulse/internal/events"
	"github.com/aristath/marketpulse/internal/reliability"
	"github.com/aristath/marketpulse/internal/utils"
	"github.com/rs/zerolog"
)

// Archiver uploads and rotates view archives
type Archiver interface {
	CreateAndUpload(ctx context.Context) (*reliability.ArchiveResult, error)
	RotateOldArchives(ctx context.Context, retentionDays int) (int, error)
}

// ArchiveJob uploads a snapshot of the derived views, then rotates old archives
type ArchiveJob struct {
	archiver      Archiver
	bus           *events.Bus
	retentionDays int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewArchiveJob creates a new archive job
func NewArchiveJob(archiver Archiver, bus *events.Bus, retentionDays int, timeout time.Duration, log zerolog.Logger) *ArchiveJob {
	return &ArchiveJob{
		archiver:      archiver,
		bus:           bus,
		retentionDays: retentionDays,
		timeout:       timeout,
		log:           log.With().Str("job", "view_archive").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *ArchiveJob) Name() string {
	return "view_archive"
}

// Run executes the archive job
func (j *ArchiveJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	timer := utils.NewTimer("view_archive", j.log).WithSlowThreshold(time.Minute)
	result, err := j.archiver.CreateAndUpload(ctx)
	if err != nil {
		timer.StopWithContext(map[string]interface{}{"error": err})
		j.bus.Publish("archive", &events.ErrorEventData{
			Error:   err.Error(),
			Context: map[string]interface{}{"job": j.Name()},
		})
		return fmt.Errorf("view archive failed: %w", err)
	}

	// Rotation failures are logged only
	rotated, err := j.archiver.RotateOldArchives(ctx, j.retentionDays)
	if err != nil {
		j.log.Warn().Err(err).Msg("Archive rotation failed")
	}
	result.Rotated = rotated
	timer.StopWithContext(map[string]interface{}{
		"key":     result.Key,
		"bytes":   result.SizeBytes,
		"rotated": rotated,
	})

	j.bus.Publish("archive", &events.ArchiveCompletedData{
		Key:       result.Key,
		SizeBytes: result.SizeBytes,
		Rotated:   result.Rotated,
	})
	return nil
}
