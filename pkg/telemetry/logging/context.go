package logging

import (
	"context"
	"log/slog"
)

type contextKey string

// RequestIDKey is the context key for request IDs.
const RequestIDKey contextKey = "request_id"

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// FromContext returns the default logger annotated with the request ID
// carried by ctx, if any.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := GetRequestID(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	return logger
}
