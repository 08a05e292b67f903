package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts generation requests.
	// Labels: use_case (content, strategy, calendar), result (success, error)
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentd",
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Total number of generation requests",
		},
		[]string{"use_case", "result"},
	)

	// GenerationDuration tracks end-to-end generation latency.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contentd",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "End-to-end duration of generation requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"use_case"},
	)

	// ValidationsTotal counts validation outcomes of generated outputs.
	// Labels: use_case, passed (true, false)
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentd",
			Subsystem: "validation",
			Name:      "results_total",
			Help:      "Total number of validation outcomes by result",
		},
		[]string{"use_case", "passed"},
	)

	// FeedbackTotal counts feedback submissions by derived label.
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentd",
			Subsystem: "feedback",
			Name:      "submissions_total",
			Help:      "Total number of feedback submissions by derived label",
		},
		[]string{"label"},
	)
)
