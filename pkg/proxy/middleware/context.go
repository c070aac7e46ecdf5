package middleware

import (
	"context"

	"paracord-hq/gateway/pkg/telemetry/logging"
)

// GetRequestID returns the id RequestIDMiddleware stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	return logging.GetRequestID(ctx)
}
