package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"paracord-hq/gateway/pkg/proxy/types"
)

// DefaultRequestsPerSecond is the per-client ceiling within one second.
const DefaultRequestsPerSecond = 300

// localClientKey is used when no forwarded address is present.
const localClientKey = "local"

type bucket struct {
	second int64
	count  int
}

// RateLimiter counts requests per client key in fixed one-second windows
// aligned to the wall clock. A client's counter resets the first time it is
// seen in a new second.
type RateLimiter struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewRateLimiter creates a limiter admitting limit requests per client per
// second. A non-positive limit uses DefaultRequestsPerSecond.
func NewRateLimiter(limit int) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRequestsPerSecond
	}
	return &RateLimiter{
		limit:   limit,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// WithClock replaces the time source. Intended for tests.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

// Limit returns the per-second ceiling.
func (l *RateLimiter) Limit() int { return l.limit }

// Allow reports whether key may make another request this second and, if
// so, counts it. Rejected requests are not counted, so a bucket never holds
// more than the ceiling.
func (l *RateLimiter) Allow(key string) bool {
	sec := l.now().Unix()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{second: sec}
		l.buckets[key] = b
	}
	if b.second != sec {
		b.second = sec
		b.count = 0
	}
	if b.count >= l.limit {
		return false
	}
	b.count++
	return true
}

// Sweep drops buckets from seconds before now and returns how many were
// removed. Dropped keys start fresh on their next request, which is what
// Allow would do anyway.
func (l *RateLimiter) Sweep(now time.Time) int {
	sec := now.Unix()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.second < sec {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Buckets returns the number of tracked client keys.
func (l *RateLimiter) Buckets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// ClientKey derives the rate limit key: the first comma-separated hop of
// X-Forwarded-For, trimmed, or "local".
func ClientKey(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return localClientKey
	}
	first, _, _ := strings.Cut(xff, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return localClientKey
}

// Counter receives admission counts.
type Counter interface {
	IncRequests()
	IncRateLimited()
}

// RateLimitMiddleware counts every request and rejects those over the
// client's ceiling with 429.
func RateLimitMiddleware(limiter *RateLimiter, counter Counter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			counter.IncRequests()

			if !limiter.Allow(ClientKey(r)) {
				counter.IncRateLimited()
				_ = types.WriteError(w, types.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
