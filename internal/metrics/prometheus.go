// Package metrics exposes Prometheus counters for practice sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "typeref"

// Manager owns a registry and the session counters registered on it.
type Manager struct {
	namespace string
	subsystem string
	registry  *prometheus.Registry

	sessionsStarted  prometheus.Counter
	sessionsFinished prometheus.Counter
	sessionsFailed   prometheus.Counter
	recordsCommitted prometheus.Counter
	commitErrors     prometheus.Counter
	activeSessions   prometheus.Gauge
	httpRequests     *prometheus.CounterVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithRegistry registers metrics on registry instead of a private one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a Manager. Without WithRegistry each Manager gets its
// own registry so several can coexist in one process.
func NewManager(opts ...Option) *Manager {
	m := &Manager{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		})
	}
	m.sessionsStarted = counter("sessions_started_total", "Sessions that accepted their first keystroke")
	m.sessionsFinished = counter("sessions_finished_total", "Sessions that reached the end of the passage or the countdown")
	m.sessionsFailed = counter("sessions_failed_total", "Expert sessions ended by a wrong keystroke")
	m.recordsCommitted = counter("records_committed_total", "Results written to history")
	m.commitErrors = counter("commit_errors_total", "History writes that failed")

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Sessions currently held by the server",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status_code"},
	)
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SessionStarted counts a session leaving idle.
func (m *Manager) SessionStarted() {
	m.sessionsStarted.Inc()
}

// SessionFinished counts a completed session.
func (m *Manager) SessionFinished() {
	m.sessionsFinished.Inc()
}

// SessionFailed counts an expert failure.
func (m *Manager) SessionFailed() {
	m.sessionsFailed.Inc()
}

// RecordCommitted counts a history write.
func (m *Manager) RecordCommitted() {
	m.recordsCommitted.Inc()
}

// CommitFailed counts a failed history write.
func (m *Manager) CommitFailed() {
	m.commitErrors.Inc()
}

// SetActiveSessions reports the number of live sessions.
func (m *Manager) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// HTTPRequest counts one served request.
func (m *Manager) HTTPRequest(route, method, statusCode string) {
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
}
