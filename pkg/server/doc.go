// Package server runs the public edge of a Paracord deployment.
//
// A Server owns every long-lived piece of the gateway: the credential store,
// the tracer, the admission pipeline, the signaling proxy, the managed
// signaling process and the TLS listener.
//
// # Lifecycle
//
// Start brings components up in this order and blocks until the context is
// cancelled, SIGINT or SIGTERM arrives, or Stop is called:
//
//  1. LAN and public address detection
//  2. The managed signaling process, configured with the public address
//  3. TLS material (loaded, or generated with the detected addresses)
//  4. The listener
//
// Shutdown reverses it. Open signaling tunnels are hijacked connections that
// http.Server does not track, so they are ended by cancelling the base
// context every request derives from.
//
// # Routes
//
//   - GET /health, /api/v1/health: liveness
//   - GET /ready: store reachability
//   - GET /metrics, /api/v1/metrics: Prometheus exposition, when enabled
//   - /livekit/...: signaling proxy (WebSocket and plain HTTP)
//   - GET /api/v1/admin/rate-limits: admission state, administrators only
//
// Every request passes, outermost first, through panic recovery, access
// logging, request ids, the per-client rate limit and CORS.
//
// # TLS
//
// Only http/1.1 is offered over ALPN. HTTP/2 cannot carry the WebSocket
// upgrade the signaling path relies on.
package server
