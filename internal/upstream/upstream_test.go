package upstream

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = time.Millisecond
	cfg.BreakerTimeout = time.Minute
	return cfg
}

func TestCall(t *testing.T) {
	t.Run("returns result on success", func(t *testing.T) {
		g := NewGuard(testConfig(), nil)

		got, err := Call(context.Background(), g, ProviderYahoo, func(context.Context) (int, error) {
			return 42, nil
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != 42 {
			t.Errorf("Expected 42, got %d", got)
		}
	})

	t.Run("retries outages", func(t *testing.T) {
		g := NewGuard(testConfig(), nil)
		calls := 0

		got, err := Call(context.Background(), g, ProviderYahoo, func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", apperrors.ErrUpstreamUnavailable
			}
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("Expected success after retries, got %v", err)
		}
		if got != "ok" || calls != 3 {
			t.Errorf("Expected ok after 3 calls, got %q after %d", got, calls)
		}
	})

	t.Run("does not retry rate limits", func(t *testing.T) {
		g := NewGuard(testConfig(), nil)
		calls := 0

		_, err := Call(context.Background(), g, ProviderNewsAPI, func(context.Context) (int, error) {
			calls++
			return 0, apperrors.ErrRateLimited
		})
		if !errors.Is(err, apperrors.ErrRateLimited) {
			t.Errorf("Expected ErrRateLimited, got %v", err)
		}
		if calls != 1 {
			t.Errorf("Expected 1 call, got %d", calls)
		}
	})

	t.Run("opens breaker after repeated outages", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxRetries = 0
		g := NewGuard(cfg, nil)

		failing := func(context.Context) (int, error) { return 0, apperrors.ErrUpstreamUnavailable }
		for i := 0; i < 5; i++ {
			_, _ = Call(context.Background(), g, ProviderHuggingFace, failing)
		}

		called := false
		_, err := Call(context.Background(), g, ProviderHuggingFace, func(context.Context) (int, error) {
			called = true
			return 1, nil
		})
		if called {
			t.Error("Expected open breaker to reject the call")
		}
		if !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
			t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
		}

		status := g.Status()
		if len(status) != 1 || status[0].State != "open" {
			t.Errorf("Expected one open breaker, got %+v", status)
		}
	})

	t.Run("not found does not trip breaker", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxRetries = 0
		g := NewGuard(cfg, nil)

		for i := 0; i < 10; i++ {
			_, _ = Call(context.Background(), g, ProviderYahoo, func(context.Context) (int, error) {
				return 0, apperrors.ErrSymbolNotFound
			})
		}
		if state := g.Status()[0].State; state != "closed" {
			t.Errorf("Expected breaker to stay closed, got %s", state)
		}
	})

	t.Run("nil guard calls through", func(t *testing.T) {
		got, err := Call(context.Background(), nil, ProviderYahoo, func(context.Context) (int, error) {
			return 7, nil
		})
		if err != nil || got != 7 {
			t.Errorf("Expected 7, got %d (%v)", got, err)
		}
	})
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, apperrors.ErrRateLimited},
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusUnauthorized, apperrors.ErrUpstreamRejected},
		{http.StatusBadRequest, apperrors.ErrUpstreamRejected},
		{http.StatusServiceUnavailable, apperrors.ErrUpstreamUnavailable},
		{http.StatusBadGateway, apperrors.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := StatusError("test", tt.status, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("StatusError(%d) = %v, want %v", tt.status, err, tt.want)
			}
		})
	}
}

func TestStaticToken(t *testing.T) {
	if _, err := StaticToken("newsapi", "")(context.Background()); !errors.Is(err, apperrors.ErrCredentialMissing) {
		t.Errorf("Expected ErrCredentialMissing, got %v", err)
	}
	if tok, err := StaticToken("newsapi", "abc")(context.Background()); err != nil || tok != "abc" {
		t.Errorf("Expected abc, got %q (%v)", tok, err)
	}
}
