// Package handlers provides the gateway's own HTTP endpoints.
//
// Signaling traffic is served by package signaling; the handlers here cover
// what the gateway answers itself:
//
//   - ReadyHandler: readiness probe over named dependencies (503 when any
//     dependency fails its ping)
//   - RateLimitHandler: admin-only view of the admission pipeline, the
//     request counters and the credential store
//
// Handlers write JSON through types.WriteJSON and errors through
// types.WriteError so every body has the same shape.
package handlers
