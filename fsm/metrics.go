package fsm

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric definitions with appropriate labels.
var (
	// dispatchesTotal counts processed events by machine and outcome (transition, stay or error).
	dispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_dispatches_total",
		Help: "Total number of processed events by machine and outcome (transition, stay or error)",
	}, []string{"machine", "outcome"})

	// transitionsTotal counts committed transitions, the initial entry included.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_transitions_total",
		Help: "Total number of committed transitions by machine, from_state and to_state",
	}, []string{"machine", "from_state", "to_state"})

	// hookFailuresTotal counts callbacks that returned an error or panicked.
	hookFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_hook_failures_total",
		Help: "Total number of failed callbacks by machine and stage",
	}, []string{"machine", "stage"})

	// drainSize tracks how many queued events one outermost dispatch ends up processing.
	drainSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fsm_drain_size",
		Help:    "Number of events processed by a single drain of the dispatch queue",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	}, []string{"machine"})
)

const (
	outcomeTransition = "transition"
	outcomeStay       = "stay"
	outcomeError      = "error"
)

// stateLabel renders a state id for a metric label. The empty optional is the
// undefined state of the initial entry.
func stateLabel(state any) string {
	if state == nil {
		return "none"
	}

	s := fmt.Sprint(state)
	if s == "" {
		return "empty"
	}

	return s
}

func sanitizeMachine(name string) string {
	if name == "" {
		return "unnamed"
	}

	return name
}
