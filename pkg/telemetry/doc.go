// Package telemetry groups the gateway's observability packages:
//
//   - logging: slog construction and request-scoped loggers
//   - metrics: admission counters exposed in Prometheus text format
//   - tracing: OpenTelemetry spans for proxied signaling traffic
//   - health: the static liveness document
package telemetry
