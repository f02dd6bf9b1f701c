package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const checkTimeout = 5 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusRecorder receives the outcome of each dependency check.
type StatusRecorder interface {
	SetDependencyUp(dependency string, up bool)
}

// DependencyStatus is the last observed state of one dependency.
type DependencyStatus struct {
	Up        bool      `json:"up"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthChecker pings the store and cache on a cron schedule.
type HealthChecker struct {
	deps     map[string]Pinger
	recorder StatusRecorder
	cron     *cron.Cron

	mu     sync.RWMutex
	status map[string]DependencyStatus
}

// NewHealthChecker creates a checker for the named dependencies.
func NewHealthChecker(deps map[string]Pinger, recorder StatusRecorder) *HealthChecker {
	return &HealthChecker{
		deps:     deps,
		recorder: recorder,
		cron:     cron.New(),
		status:   make(map[string]DependencyStatus),
	}
}

// Start runs one check immediately and then on every tick of schedule.
func (h *HealthChecker) Start(schedule string) error {
	if _, err := h.cron.AddFunc(schedule, h.CheckNow); err != nil {
		return err
	}
	log.Info().Str("schedule", schedule).Msg("Starting dependency health checks")
	h.CheckNow()
	h.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (h *HealthChecker) Stop() {
	<-h.cron.Stop().Done()
	log.Info().Msg("Stopped dependency health checks")
}

// CheckNow pings every dependency once and records the result.
func (h *HealthChecker) CheckNow() {
	for name, dep := range h.deps {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		err := dep.Ping(ctx)
		cancel()

		st := DependencyStatus{Up: err == nil, CheckedAt: time.Now().UTC()}
		if err != nil {
			st.Error = err.Error()
		}

		h.mu.Lock()
		prev, seen := h.status[name]
		h.status[name] = st
		h.mu.Unlock()

		if h.recorder != nil {
			h.recorder.SetDependencyUp(name, st.Up)
		}

		switch {
		case !st.Up && (!seen || prev.Up):
			log.Error().Err(err).Str("dependency", name).Msg("Dependency unreachable")
		case st.Up && seen && !prev.Up:
			log.Info().Str("dependency", name).Msg("Dependency recovered")
		}
	}
}

// Status returns a snapshot of the last results and whether every dependency was up.
// Dependencies that have not been checked yet count as down.
func (h *HealthChecker) Status() (map[string]DependencyStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]DependencyStatus, len(h.deps))
	healthy := true
	for name := range h.deps {
		st, ok := h.status[name]
		if !ok || !st.Up {
			healthy = false
		}
		out[name] = st
	}
	return out, healthy
}
