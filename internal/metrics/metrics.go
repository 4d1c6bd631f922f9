package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	pricingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chapak",
			Name:      "pricing_requests_total",
			Help:      "Pricing calculations by outcome (ok, closed, rejected, fallback).",
		},
		[]string{"outcome"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chapak",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chapak",
			Name:      "validations_total",
			Help:      "Ticket validations by result (valid, invalid, error).",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(pricingRequests, bookingsCreated, validations)
	})
}

// IncPricing increments the pricing counter for an outcome label.
func IncPricing(outcome string) {
	pricingRequests.WithLabelValues(outcome).Inc()
}

// IncBookingCreated increments the created-bookings counter.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncValidation increments the validation counter for a result label.
func IncValidation(result string) {
	validations.WithLabelValues(result).Inc()
}
