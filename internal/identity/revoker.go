// Package identity integrates with the auth provider's admin API. The
// lifecycle engine only needs one capability from it: disabling a subject's
// credentials at the end of an erasure cascade.
package identity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"scoutpost/internal/platform/config"
	dErrors "scoutpost/pkg/domain-errors"
)

const defaultTimeout = 10 * time.Second

// HTTPRevoker revokes credentials via the provider's admin API.
type HTTPRevoker struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

type Option func(*HTTPRevoker)

func WithLogger(logger *slog.Logger) Option {
	return func(r *HTTPRevoker) {
		r.logger = logger
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(r *HTTPRevoker) {
		r.client = client
	}
}

func NewHTTPRevoker(cfg config.Identity, opts ...Option) *HTTPRevoker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	r := &HTTPRevoker{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RevokeIdentity disables the subject's login at the provider. Idempotent by
// contract: a subject the provider no longer knows (404 or 410) counts as
// revoked, so a resumed cascade can safely call this again.
func (r *HTTPRevoker) RevokeIdentity(ctx context.Context, subjectID string) error {
	endpoint := fmt.Sprintf("%s/admin/subjects/%s/credentials", r.baseURL, url.PathEscape(subjectID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build revocation request")
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransientStore, "call identity provider")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		r.logger.InfoContext(ctx, "identity already absent at provider", "subject_id", subjectID)
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return dErrors.Newf(dErrors.CodeUnauthorized, "identity provider rejected admin credentials: %d", resp.StatusCode)
	default:
		return dErrors.Newf(dErrors.CodeTransientStore, "identity provider returned %d", resp.StatusCode)
	}
}

// NoopRevoker is the stand-in for deployments without a configured provider,
// used by local development and tests.
type NoopRevoker struct {
	logger *slog.Logger
}

func NewNoopRevoker(logger *slog.Logger) *NoopRevoker {
	return &NoopRevoker{logger: logger}
}

func (r *NoopRevoker) RevokeIdentity(ctx context.Context, subjectID string) error {
	if r.logger != nil {
		r.logger.InfoContext(ctx, "noop credential revocation", "subject_id", subjectID)
	}
	return nil
}
