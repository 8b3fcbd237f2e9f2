// Per-client rate limiting for the expensive read endpoints (the map
// payloads). Each client carries a sliding window of request timestamps;
// requests beyond the limit are rejected until the oldest stamp ages out.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter admits up to limit requests per client per window.
type RateLimiter struct {
	mu       sync.Mutex
	stamps   map[string][]time.Time
	limit    int
	window   time.Duration
	lastScan time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		stamps:   make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		lastScan: time.Now(),
	}
}

// Allow records a request for the client and reports whether it stays
// within the limit.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.scanStale(now)

	kept := rl.stamps[client][:0]
	for _, ts := range rl.stamps[client] {
		if now.Sub(ts) < rl.window {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= rl.limit {
		rl.stamps[client] = kept
		return false
	}
	rl.stamps[client] = append(kept, now)
	return true
}

// RetryAfter returns whole seconds until the client's oldest request ages
// out of the window.
func (rl *RateLimiter) RetryAfter(client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stamps := rl.stamps[client]
	if len(stamps) == 0 {
		return 0
	}
	wait := rl.window - time.Since(stamps[0])
	if wait <= 0 {
		return 0
	}
	return int(wait.Seconds()) + 1
}

// scanStale drops clients whose every request has aged out. Runs at most
// once per window; the caller holds the lock.
func (rl *RateLimiter) scanStale(now time.Time) {
	if now.Sub(rl.lastScan) < rl.window {
		return
	}
	rl.lastScan = now
	for client, stamps := range rl.stamps {
		if len(stamps) == 0 || now.Sub(stamps[len(stamps)-1]) >= rl.window {
			delete(rl.stamps, client)
		}
	}
}

// clientKey identifies the requester: the first X-Forwarded-For hop when
// present, otherwise the remote address without its port.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware rejects over-limit requests with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		if !rl.Allow(client) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(client)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
