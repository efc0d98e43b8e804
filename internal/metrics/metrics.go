package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Subtitle download metrics
var (
	SubtitleDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_downloads_total",
			Help: "Total number of subtitle downloads.",
		},
		[]string{"provider", "status"},
	)
)

// Provider request metrics
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of provider API calls by outcome (success, transient, terminal).",
		},
		[]string{"provider", "operation", "outcome"},
	)

	ProviderRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_retries_total",
			Help: "Total number of retried provider API attempts.",
		},
		[]string{"provider", "operation"},
	)
)

// Acquisition metrics
var (
	AcquisitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_acquisitions_total",
			Help: "Total number of acquisition runs by outcome.",
		},
		[]string{"outcome"},
	)

	AcquisitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subtitle_acquisition_duration_seconds",
			Help:    "Wall time of acquisition runs, searches and retries included.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	// DegradedDecodesTotal counts subtitles that fell back to a lossy encoding or the default format.
	DegradedDecodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_degraded_decodes_total",
			Help: "Total number of subtitles decoded without a confident encoding or format match.",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(
		SubtitleDownloadsTotal,
		ProviderRequestsTotal,
		ProviderRetriesTotal,
		AcquisitionsTotal,
		AcquisitionDuration,
		DegradedDecodesTotal,
	)
}
