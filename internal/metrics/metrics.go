// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// External API metrics
	UpstreamRequestsTotal *prometheus.CounterVec
	UpstreamDuration      *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain metrics
	ValuationsTotal     *prometheus.CounterVec
	PriceRefreshSymbols *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_tracker",
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of calls to external providers by outcome",
			},
			[]string{"provider", "outcome"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_tracker",
				Subsystem: "upstream",
				Name:      "duration_seconds",
				Help:      "Duration of calls to external providers",
				Buckets:   defaultBuckets,
			},
			[]string{"provider"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "portfolio_tracker",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"provider"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_tracker",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio_tracker",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "route"},
		),
		ValuationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_tracker",
				Subsystem: "portfolio",
				Name:      "valuations_total",
				Help:      "Portfolio valuations by outcome",
			},
			[]string{"outcome"},
		),
		PriceRefreshSymbols: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio_tracker",
				Subsystem: "scheduler",
				Name:      "refreshed_symbols_total",
				Help:      "Symbols processed by the price refresh job by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Default returns the process-wide metrics registered on the default registerer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics(nil)
	})
	return defaultMetrics
}

// RecordUpstream records one call to an external provider.
func (m *Metrics) RecordUpstream(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(provider, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// SetCircuitBreakerState sets the circuit breaker state gauge.
func (m *Metrics) SetCircuitBreakerState(provider string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordValuation records a portfolio valuation outcome ("success" or "error").
func (m *Metrics) RecordValuation(outcome string) {
	if m == nil {
		return
	}
	m.ValuationsTotal.WithLabelValues(outcome).Inc()
}

// RecordPriceRefresh records the outcome of refreshing one symbol.
func (m *Metrics) RecordPriceRefresh(outcome string) {
	if m == nil {
		return
	}
	m.PriceRefreshSymbols.WithLabelValues(outcome).Inc()
}
