package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lny-platform/product-catalog/internal/http/middleware"
)

func TestAPIKey(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("Should pass through with matching key", func(t *testing.T) {
		handler := middleware.APIKey("secret")(next)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(middleware.APIKeyHeader, "secret")
		resp := httptest.NewRecorder()

		handler.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusNoContent, resp.Code)
	})

	t.Run("Should reject missing key", func(t *testing.T) {
		handler := middleware.APIKey("secret")(next)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		resp := httptest.NewRecorder()

		handler.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Contains(t, resp.Body.String(), "INVALID_API_KEY")
	})

	t.Run("Should reject wrong key", func(t *testing.T) {
		handler := middleware.APIKey("secret")(next)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(middleware.APIKeyHeader, "guess")
		resp := httptest.NewRecorder()

		handler.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("Should disable the check when no key is configured", func(t *testing.T) {
		handler := middleware.APIKey("")(next)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		resp := httptest.NewRecorder()

		handler.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusNoContent, resp.Code)
	})
}
