// Package metrics exposes prometheus counters for the booking workflow.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics counts the scheduling engine's outcomes. All methods are
// safe on a nil receiver so callers can run without metrics wired.
type BookingMetrics struct {
	bookingsCreated   prometheus.Counter
	bookingConflicts  prometheus.Counter
	paymentsConfirmed prometheus.Counter
	statusTransitions *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "bookings_created_total",
			Help:      "Appointments created in WAITING status",
		}),
		bookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "booking_conflicts_total",
			Help:      "Bookings rejected because the staff/date/session slot was taken",
		}),
		paymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "payments_confirmed_total",
			Help:      "Down payments confirmed",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "status_transitions_total",
			Help:      "Schedule status transitions out of WAITING",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsCreated, m.bookingConflicts, m.paymentsConfirmed, m.statusTransitions)
	return m
}

func (m *BookingMetrics) ObserveBookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

func (m *BookingMetrics) ObserveBookingConflict() {
	if m == nil {
		return
	}
	m.bookingConflicts.Inc()
}

func (m *BookingMetrics) ObservePaymentConfirmed() {
	if m == nil {
		return
	}
	m.paymentsConfirmed.Inc()
}

func (m *BookingMetrics) ObserveStatusTransition(status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(status).Inc()
}
