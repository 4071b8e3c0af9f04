package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
)

// TokenFunc resolves an API token at call time so stored credentials can
// change without rebuilding clients.
type TokenFunc func(ctx context.Context) (string, error)

// StaticToken returns a TokenFunc for a fixed token. An empty token
// resolves to apperrors.ErrCredentialMissing.
func StaticToken(provider, token string) TokenFunc {
	return func(context.Context) (string, error) {
		if token == "" {
			return "", fmt.Errorf("%s: %w", provider, apperrors.ErrCredentialMissing)
		}
		return token, nil
	}
}

// CheckResponse maps a non-2xx provider response onto the error taxonomy.
// It reads at most 512 bytes of the body for the message.
func CheckResponse(provider string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return StatusError(provider, resp.StatusCode, strings.TrimSpace(string(snippet)))
}

// StatusError classifies an HTTP status code from a provider.
func StatusError(provider string, status int, message string) error {
	var kind error
	switch {
	case status == http.StatusTooManyRequests:
		kind = apperrors.ErrRateLimited
	case status == http.StatusNotFound:
		kind = apperrors.ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = apperrors.ErrUpstreamRejected
	case status >= 500:
		kind = apperrors.ErrUpstreamUnavailable
	default:
		kind = apperrors.ErrUpstreamRejected
	}

	if message == "" {
		return fmt.Errorf("%s returned status %d: %w", provider, status, kind)
	}
	return fmt.Errorf("%s returned status %d (%s): %w", provider, status, message, kind)
}

// TransportError wraps a failed round trip. Context cancellation is passed
// through unchanged.
func TransportError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%s request failed: %v: %w", provider, err, apperrors.ErrUpstreamUnavailable)
}
