package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingCounter struct {
	requests    atomic.Uint64
	rateLimited atomic.Uint64
}

func (c *countingCounter) IncRequests()    { c.requests.Add(1) }
func (c *countingCounter) IncRateLimited() { c.rateLimited.Add(1) }

func TestRateLimiter_WindowBoundary(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 100_000_000)}
	limiter := NewRateLimiter(300).WithClock(clock.Now)

	for i := 1; i <= 300; i++ {
		if !limiter.Allow("203.0.113.7") {
			t.Fatalf("request %d rejected, expected admitted", i)
		}
	}
	if limiter.Allow("203.0.113.7") {
		t.Fatal("request 301 admitted, expected rejected")
	}

	// Another client has its own bucket.
	if !limiter.Allow("198.51.100.1") {
		t.Error("independent client rejected")
	}

	clock.Advance(time.Second)
	if !limiter.Allow("203.0.113.7") {
		t.Error("first request of the next second rejected")
	}
}

func TestRateLimiter_RejectedRequestsAreNotCounted(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	limiter := NewRateLimiter(3).WithClock(clock.Now)

	admitted := 0
	for i := 0; i < 10; i++ {
		if limiter.Allow("203.0.113.7") {
			admitted++
		}
	}
	if admitted != 3 {
		t.Errorf("Expected 3 admitted, got %d", admitted)
	}

	limiter.mu.Lock()
	count := limiter.buckets["203.0.113.7"].count
	limiter.mu.Unlock()
	if count != 3 {
		t.Errorf("Expected stored count 3, got %d", count)
	}
}

func TestRateLimiter_DefaultLimit(t *testing.T) {
	if got := NewRateLimiter(0).Limit(); got != DefaultRequestsPerSecond {
		t.Errorf("Expected default limit %d, got %d", DefaultRequestsPerSecond, got)
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	limiter := NewRateLimiter(10).WithClock(clock.Now)

	limiter.Allow("a")
	limiter.Allow("b")
	clock.Advance(2 * time.Second)
	limiter.Allow("c")

	if removed := limiter.Sweep(clock.Now()); removed != 2 {
		t.Errorf("Expected 2 stale buckets removed, got %d", removed)
	}
	if limiter.Buckets() != 1 {
		t.Errorf("Expected 1 bucket left, got %d", limiter.Buckets())
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	limiter := NewRateLimiter(300).WithClock(clock.Now)

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if limiter.Allow("shared") {
					admitted.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if admitted.Load() != 300 {
		t.Errorf("Expected exactly 300 admitted, got %d", admitted.Load())
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name string
		xff  string
		want string
	}{
		{"absent", "", "local"},
		{"single", "203.0.113.7", "203.0.113.7"},
		{"first hop trimmed", "  203.0.113.7 , 10.0.0.1", "203.0.113.7"},
		{"empty first hop", " ,10.0.0.1", "local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := ClientKey(req); got != tt.want {
				t.Errorf("ClientKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	limiter := NewRateLimiter(300).WithClock(clock.Now)
	counter := &countingCounter{}
	wrapped := RateLimitMiddleware(limiter, counter)(okHandler())

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 300; i++ {
		if code := send("203.0.113.7"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := send("203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("request 301: expected 429, got %d", code)
	}

	if got := counter.requests.Load(); got != 301 {
		t.Errorf("Expected 301 requests counted, got %d", got)
	}
	if got := counter.rateLimited.Load(); got != 1 {
		t.Errorf("Expected 1 rate limited, got %d", got)
	}

	clock.Advance(time.Second)
	if code := send("203.0.113.7"); code != http.StatusOK {
		t.Errorf("next second: expected 200, got %d", code)
	}
}

func BenchmarkRateLimiter_Allow(b *testing.B) {
	limiter := NewRateLimiter(1 << 30)
	keys := make([]string, 64)
	for i := range keys {
		keys[i] = fmt.Sprintf("10.0.0.%d", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow(keys[i%len(keys)])
	}
}
