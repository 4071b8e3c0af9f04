// Package upstream protects calls to external providers with a per-provider
// circuit breaker and retry, and maps provider HTTP responses onto the
// apperrors taxonomy.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/metrics"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// Provider names used for breakers and metrics.
const (
	ProviderYahoo       = "yahoo"
	ProviderNewsAPI     = "newsapi"
	ProviderGoogleNews  = "googlenews"
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
)

// Config controls breaker and retry behaviour.
type Config struct {
	MaxRequests    uint32        // max requests allowed in half-open state
	Interval       time.Duration // cyclic period of the closed state to clear counts
	BreakerTimeout time.Duration // period of the open state before transitioning to half-open
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns the defaults used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		MaxRequests:    5,
		Interval:       time.Minute,
		BreakerTimeout: 30 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}
}

// Guard owns one circuit breaker per provider.
// A nil *Guard calls through without protection.
type Guard struct {
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
	config   Config
	metrics  *metrics.Metrics
}

// NewGuard creates a guard. m may be nil.
func NewGuard(config Config, m *metrics.Metrics) *Guard {
	return &Guard{
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
		config:   config,
		metrics:  m,
	}
}

func (g *Guard) breaker(name string) *gobreaker.CircuitBreaker[any] {
	g.mu.RLock()
	cb, exists := g.breakers[name]
	g.mu.RUnlock()
	if exists {
		return cb
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if cb, exists = g.breakers[name]; exists {
		return cb
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: g.config.MaxRequests,
		Interval:    g.config.Interval,
		Timeout:     g.config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		// Only outages count against the breaker; a 404 or 429 means the
		// provider is up.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, apperrors.ErrUpstreamUnavailable)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
			g.metrics.SetCircuitBreakerState(name, stateToInt(to))
		},
	}

	cb = gobreaker.NewCircuitBreaker[any](settings)
	g.breakers[name] = cb
	return cb
}

// Call runs fn through the provider's breaker, retrying outages with
// exponential backoff. Rate limits, rejections and not-found results are
// returned immediately.
func Call[T any](ctx context.Context, g *Guard, provider string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if g == nil {
		return fn(ctx)
	}

	cb := g.breaker(provider)
	backoff := g.config.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > g.config.MaxBackoff {
				backoff = g.config.MaxBackoff
			}
		}

		start := time.Now()
		result, err := cb.Execute(func() (any, error) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return fn(ctx)
		})
		g.metrics.RecordUpstream(provider, outcome(err), time.Since(start))

		if err == nil {
			value, _ := result.(T)
			return value, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.Warn("circuit breaker rejecting request", "breaker", provider)
			return zero, fmt.Errorf("%s: circuit breaker open: %w", provider, apperrors.ErrUpstreamUnavailable)
		}
		if !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
			return zero, err
		}

		lastErr = err
		if attempt < g.config.MaxRetries {
			slog.Debug("retrying upstream call", "provider", provider, "attempt", attempt+1, "error", err)
		}
	}

	return zero, lastErr
}

// Status returns the state of every breaker created so far, sorted by name.
func (g *Guard) Status() []model.BreakerStatus {
	if g == nil {
		return []model.BreakerStatus{}
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	status := make([]model.BreakerStatus, 0, len(g.breakers))
	for name, cb := range g.breakers {
		counts := cb.Counts()
		status = append(status, model.BreakerStatus{
			Name:                name,
			State:               cb.State().String(),
			Requests:            counts.Requests,
			ConsecutiveFailures: counts.ConsecutiveFailures,
		})
	}
	sort.Slice(status, func(i, j int) bool { return status[i].Name < status[j].Name })
	return status
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected_open"
	default:
		return "error"
	}
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
