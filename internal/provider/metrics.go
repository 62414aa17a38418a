package provider

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess      = "success"
	outcomeError        = "error"
	outcomeSkipped      = "skipped"
	outcomeUntranslated = "untranslated"
)

var (
	providerAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translingo_provider_attempts_total",
			Help: "Total number of translation provider attempts",
		},
		[]string{"provider", "outcome"},
	)

	providerAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "translingo_provider_attempt_duration_seconds",
			Help:    "Duration of translation provider calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"provider", "outcome"},
	)

	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translingo_resolutions_total",
			Help: "Total number of translation resolutions by final status",
		},
		[]string{"status"},
	)

	resolutionRequestSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "translingo_resolution_request_size_bytes",
			Help:    "Size of text submitted for translation in bytes",
			Buckets: []float64{16, 64, 256, 1024, 4096, 16384, 65536},
		},
	)
)

func recordAttempt(provider, outcome string, duration time.Duration) {
	providerAttemptsTotal.WithLabelValues(provider, outcome).Inc()
	if outcome != outcomeSkipped {
		providerAttemptDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
	}
}

func recordResolution(success bool, requestSize int) {
	status := "success"
	if !success {
		status = "failed"
	}
	resolutionsTotal.WithLabelValues(status).Inc()
	resolutionRequestSize.Observe(float64(requestSize))
}
