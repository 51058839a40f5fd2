// Package metrics defines the Prometheus instruments of the reservation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultApplied  = "applied"
	ResultNoop     = "noop"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics groups the service's collectors. A nil *Metrics records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	bookings    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	consumed    *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		transitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_transitions_total",
			Help: "Reservation status transitions by source status, target status and result.",
		}, []string{"from", "to", "result"}),
		bookings: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_bookings_total",
			Help: "Booking intake attempts by result.",
		}, []string{"result"}),
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reservation_operation_duration_seconds",
			Help:    "Duration of front-desk operations.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.3, 1, 3, 6},
		}, []string{"operation"}),
		consumed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_housekeeping_events_total",
			Help: "Housekeeping events consumed by type and result.",
		}, []string{"type", "result"}),
	}
}

// Transition counts one transition attempt.
func (m *Metrics) Transition(from, to, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, result).Inc()
}

// Booking counts one booking attempt.
func (m *Metrics) Booking(result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(result).Inc()
}

// HousekeepingEvent counts one consumed housekeeping event.
func (m *Metrics) HousekeepingEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.consumed.WithLabelValues(eventType, result).Inc()
}

// ObserveSince records the time elapsed since start for operation.
func (m *Metrics) ObserveSince(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
