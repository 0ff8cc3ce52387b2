package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	f := promauto.With(reg)

	return &HTTP{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_ms",
				Help:    "HTTP request duration in ms",
				Buckets: prometheus.ExponentialBuckets(5, 2, 10),
			},
			[]string{"path", "method"},
		),
	}
}

// Observe records a served request. path should be the route pattern, not
// the raw URL, to keep label cardinality bounded.
func (h *HTTP) Observe(path, method string, status int, started time.Time) {
	h.duration.WithLabelValues(path, method).Observe(float64(time.Since(started).Milliseconds()))
	h.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
}
