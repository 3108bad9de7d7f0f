package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/lny-platform/product-catalog/internal/config"
	"github.com/lny-platform/product-catalog/internal/http/apierr"
	"github.com/lny-platform/product-catalog/pkg/zerror"
)

// slidingWindow tracks request timestamps per client and answers whether the
// next request fits inside the window.
type slidingWindow struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

// allow reports whether the request is admitted, how many requests remain in
// the window, and when to retry if denied.
func (l *slidingWindow) allow(key string, now time.Time) (bool, int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := now.Add(-l.window)

	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.hits[key] = kept
		retryAfter := kept[0].Add(l.window).Sub(now)
		return false, 0, retryAfter
	}

	l.hits[key] = append(kept, now)
	return true, l.limit - len(kept) - 1, 0
}

// RateLimit applies a per-client-IP sliding window. A zero limit disables
// rate limiting. The window lives in process, so the limit is per instance.
func RateLimit(cfg config.RateLimit) func(http.Handler) http.Handler {
	if cfg.Limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := newSlidingWindow(cfg.Limit, cfg.Window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, retryAfter := limiter.allow(clientIP(r), time.Now())

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))

				res := apierr.New(zerror.NewTooManyRequests("RATE_LIMIT_EXCEEDED", "rate limit exceeded"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(res.StatusCode)
				//nolint:errcheck
				json.NewEncoder(w).Encode(res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
