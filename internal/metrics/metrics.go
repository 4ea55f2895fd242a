// Package metrics defines the Prometheus collectors for both binaries.
// Every method is safe on a nil receiver so components can run without a
// registry (tests, one-shot CLI commands).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rollcall"

// Server collectors.
type Server struct {
	decisions     *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	registryCache *prometheus.CounterVec
}

func NewServer(reg prometheus.Registerer) *Server {
	m := &Server{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "scan_decisions_total",
			Help:      "Scan decisions by reply action.",
		}, []string{"action"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		registryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "registry_cache_total",
			Help:      "Roster feed cache lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.decisions, m.httpRequests, m.registryCache)
	return m
}

func (m *Server) Decision(action string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(action).Inc()
}

func (m *Server) HTTPRequest(method, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, code).Inc()
}

func (m *Server) RegistryCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.registryCache.WithLabelValues(result).Inc()
}

// Terminal collectors.
type Terminal struct {
	outcomes      *prometheus.CounterVec
	attempts      prometheus.Counter
	submitSeconds prometheus.Histogram
	rosterSize    prometheus.Gauge
	linkUp        prometheus.Gauge
}

func NewTerminal(reg prometheus.Registerer) *Terminal {
	m := &Terminal{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "terminal",
			Name:      "scan_outcomes_total",
			Help:      "Classified scan outcomes.",
		}, []string{"outcome"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "terminal",
			Name:      "submit_attempts_total",
			Help:      "Submission attempts, including retries.",
		}),
		submitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "terminal",
			Name:      "submit_duration_seconds",
			Help:      "Wall time from first attempt to final outcome.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		rosterSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "terminal",
			Name:      "roster_entries",
			Help:      "Entries in the local roster cache.",
		}),
		linkUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "terminal",
			Name:      "link_up",
			Help:      "1 when the network link is up.",
		}),
	}
	reg.MustRegister(m.outcomes, m.attempts, m.submitSeconds, m.rosterSize, m.linkUp)
	return m
}

func (m *Terminal) Outcome(name string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(name).Inc()
	m.submitSeconds.Observe(elapsed.Seconds())
}

func (m *Terminal) Attempt() {
	if m == nil {
		return
	}
	m.attempts.Inc()
}

func (m *Terminal) RosterSize(n int) {
	if m == nil {
		return
	}
	m.rosterSize.Set(float64(n))
}

func (m *Terminal) LinkUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.linkUp.Set(1)
	} else {
		m.linkUp.Set(0)
	}
}
