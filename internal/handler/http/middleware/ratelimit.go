package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
)

// RateLimiter is a sliding-window limiter keyed by client address.
// Each key keeps the timestamps of its requests inside the window.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	clients map[string][]time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string][]time.Time),
	}
}

// Allow records a request for key and reports whether it fits the window,
// along with how long to wait when it does not.
func (rl *RateLimiter) Allow(key string) (bool, int, time.Duration) {
	now := rl.now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	hits := rl.clients[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= rl.limit {
		rl.clients[key] = kept
		return false, 0, kept[0].Sub(cutoff)
	}

	kept = append(kept, now)
	rl.clients[key] = kept
	return true, rl.limit - len(kept), 0
}

// Sweep drops keys whose requests all left the window.
func (rl *RateLimiter) Sweep() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, hits := range rl.clients {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// Handler enforces the limit on every request passing through it.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := ClientIP(r)
		ok, remaining, retryAfter := rl.Allow(key)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			slog.Warn("rate limit exceeded",
				"key", key,
				"path", r.URL.Path,
				"method", r.Method,
				"limit", rl.limit,
				"windowSec", int(rl.window.Seconds()),
			)
			response.TooManyRequests(w, "Too many requests, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP prefers the first X-Forwarded-For hop, then the connection address.
func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
