package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/aristath/marketpulse/internal/clientdata"
	"github.com/aristath/marketpulse/internal/database"
	"github.com/aristath/marketpulse/internal/events"
	"github.com/aristath/marketpulse/internal/scheduler"
)

// SystemHandlers handles system status and job trigger requests
type SystemHandlers struct {
	cacheDB   *database.DB
	cache     *clientdata.Repository
	bus       *events.Bus
	scheduler *scheduler.Scheduler
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	cacheDB *database.DB,
	cache *clientdata.Repository,
	bus *events.Bus,
	sched *scheduler.Scheduler,
	log zerolog.Logger,
) *SystemHandlers {
	return &SystemHandlers{
		cacheDB:   cacheDB,
		cache:     cache,
		bus:       bus,
		scheduler: sched,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// CacheEntryStatus is one cached snapshot in the status response
type CacheEntryStatus struct {
	clientdata.Entry
	Fresh bool `json:"fresh"`
}

// ProcessStatus describes this process and its host
type ProcessStatus struct {
	Goroutines    int     `json:"goroutines"`
	RSSBytes      uint64  `json:"rssBytes"`
	CPUPercent    float64 `json:"cpuPercent"`
	HostCPU       float64 `json:"hostCpuPercent"`
	HostMemory    float64 `json:"hostMemoryPercent"`
	HostMemoryMiB uint64  `json:"hostMemoryAvailableMiB"`
}

// SystemStatusResponse is the response of GET /api/system/status
type SystemStatusResponse struct {
	Status        string                `json:"status"`
	StartedAt     time.Time             `json:"startedAt"`
	UptimeSeconds int64                 `json:"uptimeSeconds"`
	Process       ProcessStatus         `json:"process"`
	Cache         []CacheEntryStatus    `json:"cache"`
	Database      *database.Stats       `json:"database,omitempty"`
	Subscribers   int                   `json:"subscribers"`
	DroppedEvents uint64                `json:"droppedEvents"`
	Jobs          []scheduler.JobStatus `json:"jobs"`
}

// HandleSystemStatus returns uptime, process stats, cache contents and job state
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	resp := SystemStatusResponse{
		Status:        "ok",
		StartedAt:     h.startedAt.UTC(),
		UptimeSeconds: int64(now.Sub(h.startedAt).Seconds()),
		Process:       h.getProcessStats(),
		Cache:         []CacheEntryStatus{},
		Jobs:          []scheduler.JobStatus{},
	}

	if h.cache != nil {
		entries, err := h.cache.Keys()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to list cache entries")
			resp.Status = "degraded"
		}
		for _, e := range entries {
			resp.Cache = append(resp.Cache, CacheEntryStatus{Entry: e, Fresh: e.Fresh(now)})
		}
	}

	if h.cacheDB != nil {
		stats, err := h.cacheDB.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get database stats")
			resp.Status = "degraded"
		}
		resp.Database = stats
	}

	if h.bus != nil {
		resp.Subscribers = h.bus.Subscribers()
		resp.DroppedEvents = h.bus.Dropped()
	}

	if h.scheduler != nil {
		resp.Jobs = h.scheduler.Jobs()
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleJobsStatus returns the registered jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobStatus{}
	if h.scheduler != nil {
		jobs = h.scheduler.Jobs()
	}
	h.writeJSON(w, http.StatusOK, jobs)
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.scheduler == nil {
		h.writeError(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}

	start := time.Now()
	err := h.scheduler.RunByName(name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, scheduler.ErrJobRunning):
		h.writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Str("job", name).Msg("Manually triggered job failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "failed",
			"job":    name,
			"error":  err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "completed",
		"job":         name,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// getProcessStats collects process and host usage. Failures leave fields at zero.
func (h *SystemHandlers) getProcessStats() ProcessStatus {
	stats := ProcessStatus{Goroutines: runtime.NumGoroutine()}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if memInfo, err := proc.MemoryInfo(); err == nil {
			stats.RSSBytes = memInfo.RSS
		}
		if pct, err := proc.CPUPercent(); err == nil {
			stats.CPUPercent = pct
		}
	} else {
		h.log.Warn().Err(err).Msg("Failed to inspect process")
	}

	// Short interval to keep the endpoint responsive
	if pct, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(pct) > 0 {
		stats.HostCPU = pct[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.HostMemory = vm.UsedPercent
		stats.HostMemoryMiB = vm.Available / 1024 / 1024
	} else {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}

	return stats
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SystemHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
