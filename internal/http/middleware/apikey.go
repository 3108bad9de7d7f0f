package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/lny-platform/product-catalog/internal/http/apierr"
	"github.com/lny-platform/product-catalog/pkg/zerror"
)

// APIKeyHeader is the header clients present on mutating routes.
const APIKeyHeader = "X-API-Key"

// APIKey rejects requests whose X-API-Key header does not match the
// configured key. An empty configured key disables the check.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" && r.Header.Get(APIKeyHeader) != key {
				res := apierr.New(zerror.NewUnauthorized("INVALID_API_KEY", "missing or invalid API key"))

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
