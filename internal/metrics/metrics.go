package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "reservation_status_total",
			Help:      "Count of reservation lifecycle transitions by resulting status.",
		},
		[]string{"status"},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "slot_conflicts_total",
			Help:      "Count of reservation attempts rejected for overlapping an existing one.",
		},
	)

	queueJoined = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "queue_joined_total",
			Help:      "Count of clients that joined the walk-in queue.",
		},
	)

	queueLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "turnero",
			Name:      "queue_length",
			Help:      "Current number of waiting queue entries.",
		},
	)

	noShowsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "no_shows_swept_total",
			Help:      "Count of confirmed reservations marked no-show by the sweeper.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationStatus, slotConflicts, queueJoined,
			queueLength, noShowsSwept, httpRequests,
		)
	})
}

func IncReservationStatus(status string) {
	reservationStatus.WithLabelValues(status).Inc()
}

func IncSlotConflict() {
	slotConflicts.Inc()
}

func IncQueueJoined() {
	queueJoined.Inc()
}

func SetQueueLength(n int) {
	queueLength.Set(float64(n))
}

func IncNoShowSwept() {
	noShowsSwept.Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
