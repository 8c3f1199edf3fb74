package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "crediscope_http_request_duration_seconds",
	Help:    "HTTP request latency by module, method, and status code",
	Buckets: prometheus.DefBuckets,
}, []string{"module", "method", "status"})

// Metrics returns middleware that records request latency under the given module label.
func Metrics(module string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			requestDuration.
				WithLabelValues(module, r.Method, strconv.Itoa(rec.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}
