package handlers

import (
	"context"
	"time"

	"paracord-hq/gateway/pkg/store"
	"paracord-hq/gateway/pkg/telemetry/metrics"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreStats is the credential store view used by the admin route.
type StoreStats interface {
	Stats(ctx context.Context, now time.Time) (store.Stats, error)
}

// AdmissionStats is the rate limiter view used by the admin route.
type AdmissionStats interface {
	Limit() int
	Buckets() int
}

// CounterSnapshot returns the admission counters.
type CounterSnapshot interface {
	Snapshot() metrics.Snapshot
}
