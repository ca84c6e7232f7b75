package reducer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeApplied     = "applied"
	outcomePassthrough = "passthrough"
)

// dispatchTotal counts actions seen by each reducer, split by whether a
// transition ran.
var dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
	Name: "redux_reducer_dispatch_total",
	Help: "Total number of actions dispatched to a reducer by reducer and outcome (applied or passthrough)",
}, []string{"reducer", "outcome"})
