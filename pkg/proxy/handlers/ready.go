package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"paracord-hq/gateway/pkg/proxy/types"
)

// readyTimeout bounds each dependency check.
const readyTimeout = 2 * time.Second

// ReadyHandler handles readiness checks. The gateway is ready when every
// dependency answers.
type ReadyHandler struct {
	Checks map[string]Pinger
	now    func() time.Time
}

// NewReadyHandler creates a readiness handler over the named dependencies.
func NewReadyHandler(checks map[string]Pinger) *ReadyHandler {
	return &ReadyHandler{Checks: checks, now: time.Now}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results := make(map[string]string, len(h.Checks))
	ready := true
	for name, check := range h.Checks {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		err := check.Ping(ctx)
		cancel()

		if err != nil {
			slog.Warn("readiness check failed", "dependency", name, "error", err)
			results[name] = "unavailable"
			ready = false
			continue
		}
		results[name] = "ok"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	_ = types.WriteJSON(w, statusCode, map[string]interface{}{
		"status":       status,
		"dependencies": results,
		"timestamp":    h.now().Unix(),
	})
}
