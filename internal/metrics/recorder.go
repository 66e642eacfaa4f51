package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authentication outcomes.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeAnonymous     = "anonymous"
	OutcomeDenied        = "denied"
	OutcomeError         = "error"
)

const namespace = "admin"

// Recorder counts authentication outcomes and issued session tokens.
type Recorder struct {
	registry     *prometheus.Registry
	outcomes     *prometheus.CounterVec
	tokensIssued prometheus.Counter
}

type RecorderOption func(*prometheus.Registry)

// WithProcessCollectors adds the Go runtime and process collectors.
func WithProcessCollectors() RecorderOption {
	return func(r *prometheus.Registry) {
		r.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// NewRecorder registers the auth metrics on a private registry.
func NewRecorder(options ...RecorderOption) *Recorder {
	registry := prometheus.NewRegistry()
	for _, opt := range options {
		opt(registry)
	}
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "Authentication decisions by outcome",
		}, []string{"outcome"}),
		tokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "tokens_issued_total",
			Help:      "Session tokens issued, including sliding refreshes",
		}),
	}
}

func (r *Recorder) Outcome(outcome string) {
	r.outcomes.WithLabelValues(outcome).Inc()
}

func (r *Recorder) TokenIssued() {
	r.tokensIssued.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
