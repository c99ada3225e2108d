package backend

import (
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// Metrics records backend call counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers backend collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sipertani_backend_requests_total",
		Help: "Jumlah panggilan ke API pertanian berdasarkan endpoint dan status.",
	}, []string{"method", "endpoint", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sipertani_backend_request_duration_seconds",
		Help:    "Durasi panggilan ke API pertanian per endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})
	reg.MustRegister(requests, duration)
	return &Metrics{requests: requests, duration: duration}
}

func (m *Metrics) observe(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	endpoint := endpointLabel(path)
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, endpoint, code).Inc()
	m.duration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// endpointLabel collapses numeric path segments to keep label cardinality
// bounded.
func endpointLabel(path string) string {
	return idSegment.ReplaceAllString(path, "/{id}$1")
}
