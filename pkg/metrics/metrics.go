package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	BookingsTotal        *prometheus.CounterVec
	CancellationsTotal   prometheus.Counter
	MissedTotal          prometheus.Counter
	RebookedTotal        prometheus.Counter
	TriageQueueDepth     *prometheus.GaugeVec
	EmergencyWaitTotal   prometheus.Counter
	RoutingOffersTotal   *prometheus.CounterVec
	SlotsConfiguredTotal *prometheus.CounterVec

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		BookingsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total booking attempts by kind (regular/emergency) and outcome.",
		}, []string{"kind", "outcome"}),

		CancellationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "cancellations_total",
			Help:      "Total appointments cancelled.",
		}),

		MissedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "missed_total",
			Help:      "Total appointments marked as missed.",
		}),

		RebookedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "rebooked_total",
			Help:      "Total missed appointments successfully rebooked.",
		}),

		TriageQueueDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "triage",
			Name:      "queue_depth",
			Help:      "Current number of patients waiting in a doctor's emergency queue.",
		}, []string{"doctor_id"}),

		EmergencyWaitTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "triage",
			Name:      "queued_total",
			Help:      "Total emergency requests that had to wait for a free slot.",
		}),

		RoutingOffersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "routing",
			Name:      "offers_total",
			Help:      "Doctor offers during nearest-doctor booking, by result (accepted/skipped/exhausted).",
		}, []string{"result"}),

		SlotsConfiguredTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "slots_configured_total",
			Help:      "Total slots added to doctor schedules, by pool.",
		}, []string{"pool"}),

		AuditEntriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
