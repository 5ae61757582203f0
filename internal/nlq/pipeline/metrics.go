package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the pipeline's observable counters. A nil *Metrics is valid
// and records nothing, which keeps tests quiet.
type Metrics struct {
	questionsTotal      *prometheus.CounterVec
	fallbackTotal       prometheus.Counter
	validationRejected  prometheus.Counter
	followUpsTotal      prometheus.Counter
	resolveDuration     prometheus.Histogram
	templateSelectTotal *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		questionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nlq_questions_total",
			Help: "Questions resolved, labelled by classified intent.",
		}, []string{"intent"}),
		fallbackTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "nlq_fallback_total",
			Help: "Questions routed to the LLM fallback translator.",
		}),
		validationRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "nlq_validation_rejected_total",
			Help: "Composed or generated SQL statements rejected by the validator.",
		}),
		followUpsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "nlq_follow_ups_total",
			Help: "Questions detected as follow-ups to an earlier turn.",
		}),
		resolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "nlq_resolve_duration_seconds",
			Help:    "End-to-end resolution latency per question.",
			Buckets: prometheus.DefBuckets,
		}),
		templateSelectTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nlq_template_selected_total",
			Help: "Template selections, labelled by template name.",
		}, []string{"template"}),
	}
}

func (m *Metrics) observeQuestion(intent string, followUp bool, seconds float64) {
	if m == nil {
		return
	}
	m.questionsTotal.WithLabelValues(intent).Inc()
	if followUp {
		m.followUpsTotal.Inc()
	}
	m.resolveDuration.Observe(seconds)
}

func (m *Metrics) observeFallback() {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc()
}

func (m *Metrics) observeValidationRejected() {
	if m == nil {
		return
	}
	m.validationRejected.Inc()
}

func (m *Metrics) observeTemplate(name string) {
	if m == nil || name == "" {
		return
	}
	m.templateSelectTotal.WithLabelValues(name).Inc()
}
