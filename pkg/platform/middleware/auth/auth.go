package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"scoutpost/pkg/requestcontext"
)

// Claims carries the identity the token validator extracted from a service
// token. ActorID identifies the calling operator or service account.
type Claims struct {
	ActorID string
	Scope   string
}

// TokenValidator validates bearer tokens presented to the lifecycle API.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// ScopeLifecycle is required on tokens calling erasure and export endpoints.
// Erasure is destructive; a generic application token must not reach it.
const ScopeLifecycle = "lifecycle:admin"

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireServiceToken authenticates requests with a Bearer service token and
// requires the lifecycle scope. The authenticated actor id is placed on the
// request context for audit trails.
func RequireServiceToken(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if !hasScope(claims.Scope, ScopeLifecycle) {
				logger.WarnContext(ctx, "forbidden - token missing lifecycle scope",
					"actor_id", claims.ActorID,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Token lacks required scope")
				return
			}

			ctx = requestcontext.WithActorID(ctx, claims.ActorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasScope(scopes, want string) bool {
	for _, s := range strings.Fields(scopes) {
		if s == want {
			return true
		}
	}
	return false
}
