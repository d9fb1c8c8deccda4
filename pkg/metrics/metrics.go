package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifeed_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// NotificationsCreated counts notifications persisted by the feed service.
	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifeed_notifications_created_total",
			Help: "Total number of notifications created",
		},
	)

	// NotificationsPurged counts rows removed by the retention sweeper.
	NotificationsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifeed_notifications_purged_total",
			Help: "Total number of notifications removed by retention cleanup",
		},
	)
)
