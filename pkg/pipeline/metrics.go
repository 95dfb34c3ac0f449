package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus instruments.
type Metrics struct {
	moves     *prometheus.CounterVec
	intakes   prometheus.Counter
	closed    *prometheus.CounterVec
	slaBreach prometheus.Counter
}

// NewMetrics creates and registers the engine metrics on reg. Passing nil
// returns metrics that are created but not registered, which tests use to
// avoid global registry collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venda",
			Subsystem: "pipeline",
			Name:      "moves_total",
			Help:      "Card move attempts by result",
		}, []string{"result"}),
		intakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "venda",
			Subsystem: "pipeline",
			Name:      "intakes_total",
			Help:      "Cards created through intake",
		}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venda",
			Subsystem: "pipeline",
			Name:      "closed_total",
			Help:      "Cards resolved by outcome (won or lost)",
		}, []string{"outcome"}),
		slaBreach: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "venda",
			Subsystem: "pipeline",
			Name:      "sla_breaches_observed_total",
			Help:      "Breached deadlines observed while summarizing the board",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.moves, m.intakes, m.closed, m.slaBreach)
	}
	return m
}

// move result label values.
const (
	moveResultSuccess    = "success"
	moveResultNoop       = "noop"
	moveResultNotFound   = "not_found"
	moveResultForbidden  = "forbidden"
	moveResultIncomplete = "incomplete_fields"
	moveResultError      = "error"
)
