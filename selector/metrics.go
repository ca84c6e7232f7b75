package selector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeHit  = "hit"
	outcomeMiss = "miss"
)

// evaluationsTotal counts evaluations of named selectors by cache outcome.
var evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
	Name: "redux_selector_evaluations_total",
	Help: "Total number of memoized selector evaluations by selector and outcome (hit or miss)",
}, []string{"selector", "outcome"})

func observe(name, outcome string) {
	if name == "" {
		return
	}

	evaluationsTotal.WithLabelValues(name, outcome).Inc()
}

// EvaluationsCounter exposes the counter for one selector and outcome.
func EvaluationsCounter(name, outcome string) prometheus.Counter { //nolint:ireturn
	return evaluationsTotal.WithLabelValues(name, outcome)
}
