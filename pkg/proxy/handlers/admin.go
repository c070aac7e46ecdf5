package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"paracord-hq/gateway/pkg/proxy/types"
	"paracord-hq/gateway/pkg/security/auth"
	"paracord-hq/gateway/pkg/store"
	"paracord-hq/gateway/pkg/telemetry/metrics"
)

// RateLimitStatus is the body of the admin rate limit route.
type RateLimitStatus struct {
	Limit    int              `json:"requests_per_second"`
	Buckets  int              `json:"buckets"`
	Counters metrics.Snapshot `json:"counters"`
	Store    *store.Stats     `json:"store,omitempty"`
	Viewer   int64            `json:"viewer"`
}

// RateLimitHandler reports admission state to administrators. It must be
// mounted behind auth.RequireAdmin.
type RateLimitHandler struct {
	Limiter  AdmissionStats
	Counters CounterSnapshot
	Store    StoreStats
	now      func() time.Time
}

// NewRateLimitHandler creates the admin diagnostics handler. store may be nil.
func NewRateLimitHandler(limiter AdmissionStats, counters CounterSnapshot, stats StoreStats) *RateLimitHandler {
	return &RateLimitHandler{Limiter: limiter, Counters: counters, Store: stats, now: time.Now}
}

// ServeHTTP implements http.Handler.
func (h *RateLimitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		_ = types.WriteError(w, types.ErrUnauthorized)
		return
	}

	status := RateLimitStatus{
		Limit:    h.Limiter.Limit(),
		Buckets:  h.Limiter.Buckets(),
		Counters: h.Counters.Snapshot(),
		Viewer:   principal.UserID,
	}

	if h.Store != nil {
		stats, err := h.Store.Stats(r.Context(), h.now())
		if err != nil {
			slog.Error("failed to read store stats", "error", err)
			_ = types.WriteError(w, types.New(types.KindInternal, "Internal server error", err))
			return
		}
		status.Store = &stats
	}

	_ = types.WriteJSON(w, http.StatusOK, status)
}
