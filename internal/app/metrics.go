package app

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dshills/wordsmith/internal/analyzer"
)

// Metrics holds the application's Prometheus collectors.
// Each Metrics has its own registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	analyses           *prometheus.CounterVec
	analyzerLatency    prometheus.Histogram
	suggestions        *prometheus.CounterVec
	staleApplies       prometheus.Counter
	persistenceFailure prometheus.Counter
	openSessions       prometheus.Gauge
	httpDuration       *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordsmith",
			Name:      "analyses_total",
			Help:      "Analysis requests by outcome.",
		}, []string{"outcome"}),
		analyzerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wordsmith",
			Name:      "analyzer_latency_seconds",
			Help:      "Time from request start to resolution.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordsmith",
			Name:      "suggestions_total",
			Help:      "Suggestions by event: published, invalid, applied, dismissed.",
		}, []string{"event"}),
		staleApplies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wordsmith",
			Name:      "stale_applies_total",
			Help:      "Apply requests rejected because the buffer had changed.",
		}),
		persistenceFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wordsmith",
			Name:      "persistence_failures_total",
			Help:      "Document saves that failed.",
		}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wordsmith",
			Name:      "open_sessions",
			Help:      "Currently open editing sessions.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wordsmith",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.analyses,
		m.analyzerLatency,
		m.suggestions,
		m.staleApplies,
		m.persistenceFailure,
		m.openSessions,
		m.httpDuration,
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOutcome records an analysis resolution.
func (m *Metrics) ObserveOutcome(out analyzer.Outcome) {
	m.analyses.WithLabelValues(outcomeLabel(out)).Inc()
	m.analyzerLatency.Observe(out.Latency.Seconds())
	if out.Published > 0 {
		m.suggestions.WithLabelValues("published").Add(float64(out.Published))
	}
	if out.Dropped > 0 {
		m.suggestions.WithLabelValues("invalid").Add(float64(out.Dropped))
	}
}

// RecordApplied records an applied suggestion and the suggestions it
// invalidated.
func (m *Metrics) RecordApplied(invalidated int) {
	m.suggestions.WithLabelValues("applied").Inc()
	if invalidated > 0 {
		m.suggestions.WithLabelValues("invalidated").Add(float64(invalidated))
	}
}

// RecordInvalidated records suggestions dropped by a user edit.
func (m *Metrics) RecordInvalidated(n int) {
	if n > 0 {
		m.suggestions.WithLabelValues("invalidated").Add(float64(n))
	}
}

// RecordDismissed records a dismissed suggestion.
func (m *Metrics) RecordDismissed() {
	m.suggestions.WithLabelValues("dismissed").Inc()
}

// RecordStaleApply records an apply rejected for an outdated version.
func (m *Metrics) RecordStaleApply() {
	m.staleApplies.Inc()
}

// RecordPersistenceFailure records a failed save.
func (m *Metrics) RecordPersistenceFailure() {
	m.persistenceFailure.Inc()
}

// SessionOpened and SessionClosed track the open session gauge.
func (m *Metrics) SessionOpened() { m.openSessions.Inc() }

func (m *Metrics) SessionClosed() { m.openSessions.Dec() }

// ObserveHTTP records one HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func outcomeLabel(out analyzer.Outcome) string {
	switch out.State {
	case analyzer.StateApplying:
		return "published"
	case analyzer.StateStale:
		return "stale"
	case analyzer.StateFailed:
		if errors.Is(out.Err, analyzer.ErrContract) {
			return "contract_error"
		}
		return "failed"
	default:
		return "unknown"
	}
}
