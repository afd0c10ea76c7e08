// Package metrics holds the Prometheus collectors exported on /metrics
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation results
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	// MutationsTotal counts create, update, delete and remove calls by result
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "category_mutations_total",
		Help: "Total category mutations by operation and result",
	}, []string{"operation", "result"})

	// TreeBuildDuration tracks how long it takes to load records and build a tree
	TreeBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "category_tree_build_duration_seconds",
		Help:    "Time spent loading categories and building the in-memory tree",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	})

	// CacheRequestsTotal counts cache lookups by view and result
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "category_cache_requests_total",
		Help: "Total cache lookups by cached view and hit or miss",
	}, []string{"view", "result"})
)

// ObserveMutation records the outcome of one mutation
func ObserveMutation(operation, result string) {
	MutationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveTreeBuild records the time since start
func ObserveTreeBuild(start time.Time) {
	TreeBuildDuration.Observe(time.Since(start).Seconds())
}

// ObserveCache records a cache lookup for view
func ObserveCache(view string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequestsTotal.WithLabelValues(view, result).Inc()
}
