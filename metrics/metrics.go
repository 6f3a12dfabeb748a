package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mytutor"

var (
	bookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Count of bookings entering each state.",
	}, []string{"state"})

	slotOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slot_operations_total",
		Help:      "Count of slot mutations by operation and outcome.",
	}, []string{"operation", "status"})

	versionConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "version_conflicts_total",
		Help:      "Optimistic write conflicts observed per entity.",
	}, []string{"entity"})

	reviewsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_written_total",
		Help:      "Count of reviews created or edited.",
	}, []string{"action"})

	sweepSlots = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "slots_total",
		Help:      "Slots touched by the reconciler by outcome.",
	}, []string{"outcome"})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "sweep_duration_seconds",
		Help:      "Time spent in one reconciliation sweep.",
		Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})
)

func IncBookingTransition(state string) {
	bookingTransitions.WithLabelValues(state).Inc()
}

func IncSlotOperation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	slotOperations.WithLabelValues(operation, status).Inc()
}

func IncVersionConflict(entity string) {
	versionConflicts.WithLabelValues(entity).Inc()
}

func IncReview(action string) {
	reviewsWritten.WithLabelValues(action).Inc()
}

func AddSweep(outcome string, n int) {
	if n > 0 {
		sweepSlots.WithLabelValues(outcome).Add(float64(n))
	}
}

func ObserveSweep(seconds float64) {
	sweepDuration.Observe(seconds)
}
