package handlers

import (
	"net/http"

	"github.com/isdelr/userdir-be/internal/monitoring"
)

// HealthReporter exposes the last dependency check results.
type HealthReporter interface {
	Status() (map[string]monitoring.DependencyStatus, bool)
}

// HealthHandler serves GET /healthz.
type HealthHandler struct {
	reporter HealthReporter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(reporter HealthReporter) *HealthHandler {
	return &HealthHandler{reporter: reporter}
}

// Serve responds 200 when every dependency was reachable on the last check, 503 otherwise.
func (h *HealthHandler) Serve(w http.ResponseWriter, r *http.Request) {
	deps, healthy := h.reporter.Status()
	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	writeJSON(w, status, map[string]interface{}{
		"status":       state,
		"dependencies": deps,
	})
}
