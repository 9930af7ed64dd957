// Package requestmeta provides middleware for request-scoped metadata.
// All operations within a single HTTP request share the same request id and
// "now" timestamp, keeping audit events and job timestamps consistent.
package requestmeta

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"scoutpost/pkg/requestcontext"
)

// Middleware stamps the context with a correlation id (honoring an inbound
// X-Request-ID) and the request start time.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
