package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelops",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelops",
			Name:      "transitions_total",
			Help:      "Booking and room state transitions by type and result.",
		},
		[]string{"transition", "result"},
	)

	versionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotelops",
			Name:      "version_conflicts_total",
			Help:      "Optimistic concurrency conflicts detected on ledger writes.",
		},
	)

	roomsCleaning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hotelops",
			Name:      "rooms_cleaning",
			Help:      "Rooms currently in the cleaning buffer.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, transitions, versionConflicts, roomsCleaning)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncTransition records a state transition attempt and its outcome.
func IncTransition(transition, result string) {
	transitions.WithLabelValues(transition, result).Inc()
}

// IncVersionConflict records an optimistic locking conflict.
func IncVersionConflict() {
	versionConflicts.Inc()
}

// SetRoomsCleaning updates the cleaning-rooms gauge.
func SetRoomsCleaning(n int) {
	roomsCleaning.Set(float64(n))
}

// IncRoomsCleaning bumps the gauge when a room enters the cleaning buffer.
func IncRoomsCleaning() {
	roomsCleaning.Inc()
}

// DecRoomsCleaning lowers the gauge when a room becomes available again.
func DecRoomsCleaning() {
	roomsCleaning.Dec()
}
