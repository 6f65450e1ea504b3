package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// WindowLimiter admits up to limit requests per key within a sliding window.
// Request timestamps are kept per key behind a mutex so concurrent bursts
// from the same address cannot lose updates.
type WindowLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	visitors map[string][]time.Time
}

// NewWindowLimiter creates a limiter admitting limit requests per window for
// each key, and starts a background sweep of idle keys.
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	l := &WindowLimiter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		visitors: make(map[string][]time.Time),
	}
	go l.cleanup()
	return l
}

// Allow records a request for key and reports whether it is within the
// limit. Denied requests are not recorded.
func (l *WindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	recent := l.visitors[key][:0]
	for _, t := range l.visitors[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.limit {
		l.visitors[key] = recent
		return false
	}

	l.visitors[key] = append(recent, l.now())
	return true
}

func (l *WindowLimiter) cleanup() {
	for {
		time.Sleep(10 * time.Minute)
		l.mu.Lock()
		cutoff := l.now().Add(-l.window)
		for key, times := range l.visitors {
			if len(times) == 0 || !times[len(times)-1].After(cutoff) {
				delete(l.visitors, key)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit returns middleware that rejects requests over the per-address
// limit with 429.
func RateLimit(limiter *WindowLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
