package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados posibles de una asignación animal -> recinto.
const (
	ResultAssigned           = "assigned"
	ResultNoop               = "noop"
	ResultDietMismatch       = "diet_mismatch"
	ResultCapacityExceeded   = "capacity_exceeded"
	ResultPersistenceFailure = "persistence_failure"
	ResultNotFound           = "not_found"
)

var (
	assignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zookeeper",
		Name:      "assignments_total",
		Help:      "Animal to enclosure assignments by result",
	}, []string{"result"})

	compensations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zookeeper",
		Name:      "ledger_compensations_total",
		Help:      "Reservations rolled back after a persistence failure",
	})

	occupancy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "zookeeper",
		Name:      "enclosure_occupancy",
		Help:      "Animals currently assigned per enclosure",
	}, []string{"enclosure_id"})

	persistLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zookeeper",
		Name:      "assignment_persist_seconds",
		Help:      "Latency of the persistence step of an assignment",
		Buckets:   prometheus.DefBuckets,
	})

	backfillCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zookeeper",
		Name:      "backfill_enclosures_created_total",
		Help:      "Enclosures created by the legacy backfill",
	})
)

func ObserveAssignment(result string) {
	assignments.WithLabelValues(result).Inc()
}

func ObserveCompensation() {
	compensations.Inc()
}

func SetOccupancy(enclosureID string, n int) {
	occupancy.WithLabelValues(enclosureID).Set(float64(n))
}

func ForgetEnclosure(enclosureID string) {
	occupancy.DeleteLabelValues(enclosureID)
}

func ObservePersist(seconds float64) {
	persistLatency.Observe(seconds)
}

func AddBackfillCreated(n int) {
	if n > 0 {
		backfillCreated.Add(float64(n))
	}
}

// Handler expone el registry default en /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
