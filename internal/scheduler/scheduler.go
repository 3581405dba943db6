// Package scheduler runs the background jobs on cron schedules.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var (
	// ErrUnknownJob is returned when triggering a job that was never registered
	ErrUnknownJob = errors.New("unknown job")
	// ErrJobRunning is returned when a job is triggered while a previous run is in progress
	ErrJobRunning = errors.New("job already running")
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobStatus reports the state of a registered job
type JobStatus struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Running   bool      `json:"running"`
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	LastRun   time.Time `json:"lastRun"`
	LastError string    `json:"lastError,omitempty"`
	NextRun   time.Time `json:"nextRun"`
}

type registration struct {
	job      Job
	schedule string
	entryID  cron.EntryID
	running  sync.Mutex

	mu        sync.Mutex
	runs      int
	failures  int
	lastRun   time.Time
	lastError string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	mu   sync.RWMutex
	jobs map[string]*registration
	log  zerolog.Logger
}

// New creates a new scheduler. Schedules use the standard five-field cron
// syntax and descriptors such as "@hourly" or "@every 1m".
func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	adapter := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter)),
		),
		jobs: make(map[string]*registration),
		log:  log,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.Jobs())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "*/5 * * * *"   - Every 5 minutes
//   - "@hourly"       - Every hour
//   - "0 9 * * 1-5"   - 9 AM weekdays
//   - "@every 30s"    - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %q already registered", job.Name())
	}

	reg := &registration{job: job, schedule: schedule}
	id, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(reg); err != nil && !errors.Is(err, ErrJobRunning) {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}
	reg.entryID = id
	s.jobs[job.Name()] = reg

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately (outside schedule). Registered jobs share
// their overlap guard and statistics with scheduled runs.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")

	s.mu.RLock()
	reg, ok := s.jobs[job.Name()]
	s.mu.RUnlock()
	if !ok {
		return job.Run()
	}
	return s.run(reg)
}

// RunByName executes a registered job immediately
func (s *Scheduler) RunByName(name string) error {
	s.mu.RLock()
	reg, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.RunNow(reg.job)
}

// Jobs returns the status of every registered job, sorted by name
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for name, reg := range s.jobs {
		running := !reg.running.TryLock()
		if !running {
			reg.running.Unlock()
		}

		reg.mu.Lock()
		status := JobStatus{
			Name:      name,
			Schedule:  reg.schedule,
			Running:   running,
			Runs:      reg.runs,
			Failures:  reg.failures,
			LastRun:   reg.lastRun,
			LastError: reg.lastError,
			NextRun:   s.cron.Entry(reg.entryID).Next,
		}
		reg.mu.Unlock()
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

func (s *Scheduler) run(reg *registration) error {
	name := reg.job.Name()
	if !reg.running.TryLock() {
		s.log.Warn().Str("job", name).Msg("Previous run still in progress, skipping")
		return fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	defer reg.running.Unlock()

	s.log.Debug().Str("job", name).Msg("Running job")
	start := time.Now()
	err := reg.job.Run()

	reg.mu.Lock()
	reg.runs++
	reg.lastRun = start
	reg.lastError = ""
	if err != nil {
		reg.failures++
		reg.lastError = err.Error()
	}
	reg.mu.Unlock()

	if err == nil {
		s.log.Debug().
			Str("job", name).
			Dur("duration", time.Since(start)).
			Msg("Job completed")
	}
	return err
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
