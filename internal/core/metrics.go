package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records pipeline counters on a per-dataset registry so
// concurrent datasets (tests, verify runs) stay isolated. All methods
// are nil-safe.
type Metrics struct {
	registry *prometheus.Registry

	pagesLoaded    prometheus.Counter
	entitiesLoaded *prometheus.CounterVec
	issues         *prometheus.CounterVec
	fixesStaged    prometheus.Counter
	fixesApplied   prometheus.Counter
}

// NewMetrics builds a metrics recorder with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		pagesLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "scm_pages_loaded_total",
			Help: "Pages fetched from the upstream API.",
		}),
		entitiesLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scm_entities_loaded_total",
			Help: "Entities loaded, by collection.",
		}, []string{"collection"}),
		issues: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scm_issues_total",
			Help: "Issues recorded in the ledger, by kind.",
		}, []string{"kind"}),
		fixesStaged: factory.NewCounter(prometheus.CounterOpts{
			Name: "scm_fixes_staged_total",
			Help: "Entities queued with a staged fix.",
		}),
		fixesApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "scm_fixes_applied_total",
			Help: "Fixes confirmed and written upstream.",
		}),
	}
}

// Registry exposes the underlying registry for callers serving /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) pageLoaded() {
	if m != nil {
		m.pagesLoaded.Inc()
	}
}

func (m *Metrics) entityLoaded(collection string) {
	if m != nil {
		m.entitiesLoaded.WithLabelValues(collection).Inc()
	}
}

func (m *Metrics) issueRecorded(kind string) {
	if m != nil {
		m.issues.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) fixStaged() {
	if m != nil {
		m.fixesStaged.Inc()
	}
}

func (m *Metrics) fixApplied() {
	if m != nil {
		m.fixesApplied.Inc()
	}
}
