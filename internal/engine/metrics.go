package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
// A nil *Metrics records nothing.
type Metrics struct {
	transitions        *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	interrupts         *prometheus.CounterVec
	aborts             *prometheus.CounterVec
	steps              *prometheus.HistogramVec
}

// NewMetrics creates the engine collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnkit_transitions_total",
				Help: "Committed transitions, by game and the decision answered.",
			},
			[]string{"game", "decision"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnkit_validation_failures_total",
				Help: "Choices rejected by the validation gate.",
			},
			[]string{"game", "decision"},
		),
		interrupts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnkit_interrupts_resolved_total",
				Help: "Interrupts resolved while draining the pending queue.",
			},
			[]string{"game", "interrupt"},
		),
		aborts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnkit_aborted_transitions_total",
				Help: "Transitions aborted before commit, by reason.",
			},
			[]string{"game", "reason"},
		),
		steps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turnkit_transition_steps",
				Help:    "Interrupts resolved per committed transition.",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 64, 256},
			},
			[]string{"game"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.transitions, m.validationFailures, m.interrupts, m.aborts, m.steps,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) transition(game, decision string, steps int) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(game, decision).Inc()
	m.steps.WithLabelValues(game).Observe(float64(steps))
}

func (m *Metrics) validationFailure(game, decision string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(game, decision).Inc()
}

func (m *Metrics) interrupt(game, tag string) {
	if m == nil {
		return
	}
	m.interrupts.WithLabelValues(game, tag).Inc()
}

func (m *Metrics) aborted(game, reason string) {
	if m == nil {
		return
	}
	m.aborts.WithLabelValues(game, reason).Inc()
}
