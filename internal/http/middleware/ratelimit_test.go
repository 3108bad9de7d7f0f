package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lny-platform/product-catalog/internal/config"
)

func TestSlidingWindowAllow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should admit up to the limit inside one window", func(t *testing.T) {
		w := newSlidingWindow(3, time.Minute)

		for i := 0; i < 3; i++ {
			allowed, remaining, _ := w.allow("client", now)
			assert.True(t, allowed)
			assert.Equal(t, 2-i, remaining)
		}

		allowed, remaining, retryAfter := w.allow("client", now)
		assert.False(t, allowed)
		assert.Equal(t, 0, remaining)
		assert.Equal(t, time.Minute, retryAfter)
	})

	t.Run("Should admit again once old hits leave the window", func(t *testing.T) {
		w := newSlidingWindow(1, time.Minute)

		allowed, _, _ := w.allow("client", now)
		assert.True(t, allowed)

		allowed, _, _ = w.allow("client", now.Add(30*time.Second))
		assert.False(t, allowed)

		allowed, _, _ = w.allow("client", now.Add(61*time.Second))
		assert.True(t, allowed)
	})

	t.Run("Should track clients independently", func(t *testing.T) {
		w := newSlidingWindow(1, time.Minute)

		allowed, _, _ := w.allow("a", now)
		assert.True(t, allowed)

		allowed, _, _ = w.allow("b", now)
		assert.True(t, allowed)

		allowed, _, _ = w.allow("a", now)
		assert.False(t, allowed)
	})
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("Should respond 429 with headers once the limit is hit", func(t *testing.T) {
		handler := RateLimit(config.RateLimit{Limit: 2, Window: time.Minute})(next)

		var resp *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			resp = httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
		}

		assert.Equal(t, http.StatusTooManyRequests, resp.Code)
		assert.Equal(t, "2", resp.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", resp.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header().Get("Retry-After"))
		assert.Contains(t, resp.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("Should disable limiting for a zero limit", func(t *testing.T) {
		handler := RateLimit(config.RateLimit{})(next)

		for i := 0; i < 10; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			assert.Equal(t, http.StatusNoContent, resp.Code)
		}
	})
}
