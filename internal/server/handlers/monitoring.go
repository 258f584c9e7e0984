package handlers

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/webforge/internal/server/responses"
	"git.home.luguber.info/inful/webforge/internal/version"
)

// MonitoringHandlers serves liveness endpoints.
type MonitoringHandlers struct {
	startTime time.Time
}

// NewMonitoringHandlers creates monitoring handlers reporting uptime since startTime.
func NewMonitoringHandlers(startTime time.Time) *MonitoringHandlers {
	return &MonitoringHandlers{startTime: startTime}
}

// HandleHealthCheck reports that the process is serving.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	_ = writeJSONPretty(w, r, http.StatusOK, responses.HealthResponse{
		Status:    "ok",
		Timestamp: now.UTC(),
		Version:   version.Version,
		Uptime:    now.Sub(h.startTime).Seconds(),
	})
}
