package reasoning

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	synthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediscope_synthesis_total",
		Help: "Synthesis attempts by outcome status",
	}, []string{"status"})

	synthesisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crediscope_synthesis_latency_seconds",
		Help:    "Synthesis latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	})
)
