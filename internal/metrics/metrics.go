package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "souldream_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "souldream_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// NotificationsSent counts per-channel dispatch outcomes
	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "souldream_notifications_sent_total",
			Help: "Number of successful or failed notification channel dispatches",
		},
		[]string{"channel", "status"},
	)

	// TokensPruned counts device tokens removed after permanent failures
	TokensPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "souldream_tokens_pruned_total",
			Help: "Number of device tokens pruned as permanently invalid",
		},
	)
)

func Init() {
	prometheus.MustRegister(HTTPRequests, RequestDuration, NotificationsSent, TokensPruned)
}
