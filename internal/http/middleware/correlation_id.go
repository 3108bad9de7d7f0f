package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lny-platform/product-catalog/pkg/correlationid"
)

// CorrelationID propagates the inbound correlation id, generating one when
// the client sent none, and echoes it on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationid.Header)
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(correlationid.Header, id)
			next.ServeHTTP(w, r.WithContext(correlationid.NewContext(r.Context(), id)))
		})
	}
}
