package observability

import (
	"context"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records dispatch outcomes, candidate rejections and handler latency.
type Metrics struct {
	dispatches *prometheus.CounterVec
	rejections *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conduit_dispatch_total",
				Help: "Total number of dispatches by intent and terminal status",
			},
			[]string{"intent", "status"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conduit_candidate_rejections_total",
				Help: "Total number of skipped or faulted handler candidates",
			},
			[]string{"intent", "reason"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conduit_handler_duration_seconds",
				Help:    "Duration of handler invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Collectors returns the underlying collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.dispatches, m.rejections, m.duration}
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReject: func(_ context.Context, e *domain.DispatchEvent, f domain.Failure) {
			m.rejections.WithLabelValues(e.Intent, string(f.Kind)).Inc()
		},
		OnInvoke: func(_ context.Context, e *domain.InvokeEvent) {
			m.duration.WithLabelValues(e.Handler).Observe(e.Duration.Seconds())
		},
		OnOutcome: func(_ context.Context, o *domain.Outcome) {
			m.dispatches.WithLabelValues(o.Intent, o.Status.String()).Inc()
		},
	}
}
