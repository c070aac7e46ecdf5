// Package tracing provides OpenTelemetry spans for signaling traffic.
//
// When telemetry.tracing.enabled is set, spans are batched to an OTLP gRPC
// collector; otherwise a noop tracer is used. The signaling proxy opens one
// span per forwarded request or tunnel and injects W3C trace context into
// backend requests.
package tracing
