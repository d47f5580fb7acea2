package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the booking engine's instrumentation. A nil *Metrics is
// valid and turns every method into a no-op, which keeps test wiring small.
type Metrics struct {
	BookingsTotal      prometheus.Counter
	CancellationsTotal prometheus.Counter
	BookingFailures    *prometheus.CounterVec
	RefreshLatency     prometheus.Histogram
	Occupancy          *prometheus.GaugeVec
}

// New creates and registers all booking metrics on the default registry.
func New(namespace string) *Metrics {
	return &Metrics{
		BookingsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Total number of successfully persisted bookings",
		}),
		CancellationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Total number of successful cancellations",
		}),
		BookingFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_failures_total",
			Help:      "Booking and cancellation requests that failed at the store",
		}, []string{"operation"}),
		RefreshLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "capacity_refresh_duration_seconds",
			Help:      "Time spent rebuilding the occupancy map from the store",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		Occupancy: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slot_occupancy",
			Help:      "Locally tracked occupancy per slot key",
		}, []string{"slot_key"}),
	}
}

// RefreshTimer times one capacity refresh; call ObserveDuration when done.
func (m *Metrics) RefreshTimer() *prometheus.Timer {
	if m == nil {
		return prometheus.NewTimer(nil)
	}
	return prometheus.NewTimer(m.RefreshLatency)
}

func (m *Metrics) IncBookings() {
	if m != nil {
		m.BookingsTotal.Inc()
	}
}

func (m *Metrics) IncCancellations() {
	if m != nil {
		m.CancellationsTotal.Inc()
	}
}

func (m *Metrics) IncFailure(operation string) {
	if m != nil {
		m.BookingFailures.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) SetOccupancy(slotKey string, count int) {
	if m != nil {
		m.Occupancy.WithLabelValues(slotKey).Set(float64(count))
	}
}
