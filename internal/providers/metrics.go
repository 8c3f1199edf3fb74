package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediscope_provider_calls_total",
		Help: "Provider invocations by provider, status, and reason",
	}, []string{"provider", "status", "reason"})

	callLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crediscope_provider_latency_seconds",
		Help:    "Provider invocation latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 9),
	}, []string{"provider"})
)

func observe(out Outcome) {
	callsTotal.WithLabelValues(string(out.Provider), string(out.Status), string(out.Reason)).Inc()
	callLatency.WithLabelValues(string(out.Provider)).Observe(out.Latency.Seconds())
}
