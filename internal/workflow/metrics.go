package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediscope_analyses_total",
		Help: "Computed analyses by verdict label and degradation",
	}, []string{"label", "degraded"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crediscope_analysis_duration_seconds",
		Help:    "Time to compute an analysis, excluding cache hits",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)
