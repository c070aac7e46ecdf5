// Package metrics exposes the gateway's admission counters.
//
// Exported series:
//
//	paracord_up 1
//	paracord_http_requests_total
//	paracord_http_rate_limited_total
//	paracord_signaling_tunnels_active
//
// The rate limit middleware increments the counters; the server mounts
// Handler at /metrics and /api/v1/metrics.
package metrics
