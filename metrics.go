package tuner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for a Registry: declarations, context
// lifecycle, samples drawn and best-value improvements.
type Metrics struct {
	VariablesDeclared *prometheus.CounterVec
	ContextsBegun     prometheus.Counter
	ContextsEnded     prometheus.Counter
	SamplesDrawn      prometheus.Counter
	BestImprovements  prometheus.Counter
	IDOverwrites      *prometheus.CounterVec
	ContextDuration   prometheus.Histogram
}

// NewMetrics creates a Metrics instance registered on reg. Pass
// prometheus.DefaultRegisterer to expose them process-wide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		VariablesDeclared: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tuner_variables_declared_total",
			Help: "Total number of variables declared, by kind (input or output)",
		}, []string{"kind"}),
		ContextsBegun: factory.NewCounter(prometheus.CounterOpts{
			Name: "tuner_contexts_begun_total",
			Help: "Total number of contexts opened",
		}),
		ContextsEnded: factory.NewCounter(prometheus.CounterOpts{
			Name: "tuner_contexts_ended_total",
			Help: "Total number of contexts retired",
		}),
		SamplesDrawn: factory.NewCounter(prometheus.CounterOpts{
			Name: "tuner_samples_drawn_total",
			Help: "Total number of values sampled for output variables",
		}),
		BestImprovements: factory.NewCounter(prometheus.CounterOpts{
			Name: "tuner_best_improvements_total",
			Help: "Total number of times a variable's best value changed",
		}),
		IDOverwrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tuner_id_overwrites_total",
			Help: "Total number of declarations or contexts that replaced a live id, by kind",
		}, []string{"kind"}),
		ContextDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tuner_context_duration_seconds",
			Help:    "Measured duration of timed contexts",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12),
		}),
	}
}

// The helpers below are nil-safe so a Registry can run without metrics.

func (m *Metrics) declared(output bool) {
	if m == nil {
		return
	}

	kind := "input"
	if output {
		kind = "output"
	}

	m.VariablesDeclared.WithLabelValues(kind).Inc()
}

func (m *Metrics) overwritten(kind string) {
	if m == nil {
		return
	}

	m.IDOverwrites.WithLabelValues(kind).Inc()
}

func (m *Metrics) begun() {
	if m == nil {
		return
	}

	m.ContextsBegun.Inc()
}

func (m *Metrics) sampled(n int) {
	if m == nil {
		return
	}

	m.SamplesDrawn.Add(float64(n))
}

func (m *Metrics) ended(elapsed time.Duration, timed bool, improvements int) {
	if m == nil {
		return
	}

	m.ContextsEnded.Inc()
	m.BestImprovements.Add(float64(improvements))

	if timed {
		m.ContextDuration.Observe(elapsed.Seconds())
	}
}
