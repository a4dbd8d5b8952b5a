package downstream

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_backend_requests_total",
			Help: "Total number of backend API calls by method and status class",
		},
		[]string{"method", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_backend_request_duration_seconds",
			Help:    "Backend API call duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method"},
	)
)

func observe(method, status string, d time.Duration) {
	backendRequestsTotal.WithLabelValues(method, status).Inc()
	backendRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// statusClass keeps label cardinality low: "2xx", "4xx", ...
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
