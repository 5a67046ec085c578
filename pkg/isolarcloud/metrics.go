package isolarcloud

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sungrowmon_isolarcloud_requests_total",
			Help: "iSolarCloud OpenAPI requests by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sungrowmon_isolarcloud_request_duration_seconds",
			Help:    "iSolarCloud OpenAPI request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	tokenRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sungrowmon_isolarcloud_token_refresh_total",
			Help: "Access token refreshes by result",
		},
		[]string{"result"},
	)
)

// MetricsCollectors returns collectors for the iSolarCloud client.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		requestsTotal,
		requestDuration,
		tokenRefreshTotal,
	}
}
