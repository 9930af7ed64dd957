package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutpost/internal/platform/config"
	dErrors "scoutpost/pkg/domain-errors"
)

func newRevokerFor(t *testing.T, handler http.HandlerFunc) *HTTPRevoker {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPRevoker(config.Identity{BaseURL: server.URL, APIKey: "admin-key"})
}

func TestRevokeIdentity(t *testing.T) {
	t.Run("204 revokes", func(t *testing.T) {
		var gotPath, gotAuth string
		revoker := newRevokerFor(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, revoker.RevokeIdentity(context.Background(), "s1"))
		assert.Equal(t, "/admin/subjects/s1/credentials", gotPath)
		assert.Equal(t, "Bearer admin-key", gotAuth)
	})

	t.Run("404 counts as revoked", func(t *testing.T) {
		revoker := newRevokerFor(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		require.NoError(t, revoker.RevokeIdentity(context.Background(), "s1"))
	})

	t.Run("5xx is transient", func(t *testing.T) {
		revoker := newRevokerFor(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		err := revoker.RevokeIdentity(context.Background(), "s1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTransientStore))
	})

	t.Run("403 is not retried as transient", func(t *testing.T) {
		revoker := newRevokerFor(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		err := revoker.RevokeIdentity(context.Background(), "s1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
