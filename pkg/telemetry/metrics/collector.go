package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every exported metric name.
const Namespace = "paracord"

// Collector holds the admission counters and exposes them on a private
// Prometheus registry. The atomics are the source of truth; the registry
// reads them at scrape time.
type Collector struct {
	registry *prometheus.Registry

	requests      atomic.Uint64
	rateLimited   atomic.Uint64
	activeTunnels atomic.Int64
}

// NewCollector creates a collector registered on its own registry.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "up",
			Help:      "Whether the gateway is serving.",
		}, func() float64 { return 1 }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Requests seen by the admission pipeline, including rejected ones.",
		}, func() float64 { return float64(c.requests.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}, func() float64 { return float64(c.rateLimited.Load()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "signaling_tunnels_active",
			Help:      "Open WebSocket tunnels to the signaling backend.",
		}, func() float64 { return float64(c.activeTunnels.Load()) }),
	)

	return c
}

// IncRequests counts one admitted or rejected request.
func (c *Collector) IncRequests() { c.requests.Add(1) }

// IncRateLimited counts one rate-limited request.
func (c *Collector) IncRateLimited() { c.rateLimited.Add(1) }

// TunnelOpened and TunnelClosed track live signaling tunnels.
func (c *Collector) TunnelOpened() { c.activeTunnels.Add(1) }
func (c *Collector) TunnelClosed() { c.activeTunnels.Add(-1) }

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests      uint64 `json:"http_requests_total"`
	RateLimited   uint64 `json:"http_rate_limited_total"`
	ActiveTunnels int64  `json:"signaling_tunnels_active"`
}

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Requests:      c.requests.Load(),
		RateLimited:   c.rateLimited.Load(),
		ActiveTunnels: c.activeTunnels.Load(),
	}
}

// Handler serves the registry in the Prometheus text exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
