package testutil

import (
	"context"
	"net/http"
	"time"

	"scoutpost/pkg/requestcontext"
)

// WithActor adds an authenticated actor id to the request context, simulating
// what the service-token middleware does for authenticated requests.
func WithActor(req *http.Request, actorID string) *http.Request {
	ctx := requestcontext.WithActorID(req.Context(), actorID)
	return req.WithContext(ctx)
}

// WithFixedTime pins the request time on the request context so handlers and
// services observe a deterministic clock.
func WithFixedTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
