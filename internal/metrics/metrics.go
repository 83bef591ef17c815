package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CapturesTotal       *prometheus.CounterVec
	CaptureDuration     prometheus.Histogram
)

var initOnce sync.Once

// Init registers the process metrics on the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snapshot_http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		)

		CapturesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_captures_total",
				Help: "Total number of capture runs.",
			},
			[]string{"status", "error_code"},
		)

		CaptureDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "snapshot_capture_duration_seconds",
				Help:    "End-to-end duration of capture runs.",
				Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
			},
		)
	})
}

// ObserveCapture records one capture run. No-op until Init has been called.
func ObserveCapture(status, errorCode string, seconds float64) {
	if CapturesTotal == nil || CaptureDuration == nil {
		return
	}
	CapturesTotal.WithLabelValues(status, errorCode).Inc()
	CaptureDuration.Observe(seconds)
}
