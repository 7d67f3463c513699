package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/promptflow/pkg/domain"
)

// Metrics records turn outcomes in Prometheus.
type Metrics struct {
	Turns        *prometheus.CounterVec
	Rejections   *prometheus.CounterVec
	Completions  prometheus.Counter
	Errors       prometheus.Counter
	TurnDuration prometheus.Histogram
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptflow_turns_total",
				Help: "Total number of handled turns",
			},
			[]string{"question", "outcome"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptflow_rejections_total",
				Help: "Total number of rejected answers",
			},
			[]string{"question", "reason"},
		),
		Completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promptflow_completions_total",
			Help: "Total number of completed question sequences",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promptflow_turn_errors_total",
			Help: "Total number of turns that failed with an internal error",
		}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "promptflow_turn_duration_seconds",
			Help:    "Duration of turn handling, including store round trips",
			Buckets: prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{m.Turns, m.Rejections, m.Completions, m.Errors, m.TurnDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			m.TurnDuration.Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.Errors.Inc()
				return
			}
			m.Turns.WithLabelValues(string(e.Question), string(e.Outcome)).Inc()
		},
		OnRejection: func(_ context.Context, e *domain.TurnEvent) {
			m.Rejections.WithLabelValues(string(e.Question), e.Reason).Inc()
		},
		OnCompletion: func(_ context.Context, _ *domain.TurnEvent) {
			m.Completions.Inc()
		},
	}
}

// Handler exposes the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
