package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docentdesk_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docentdesk_bookings_created_total",
			Help: "Total bookings created",
		},
	)

	BookingsCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docentdesk_bookings_cancelled_total",
			Help: "Total bookings cancelled, by resulting status",
		},
		[]string{"status"},
	)

	CapacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docentdesk_capacity_rejections_total",
			Help: "Bookings rejected because the event was sold out",
		},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docentdesk_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docentdesk_outbox_lag_seconds",
			Help: "Age of the oldest unpublished outbox record",
		},
	)

	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docentdesk_notification_failures_total",
			Help: "Emails that failed to send",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docentdesk_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
