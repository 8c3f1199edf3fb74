package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "crediscope_cache_lookups_total",
	Help: "Cache lookups by how they were served",
}, []string{"result"})
