package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by bucket version
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appcache_hits_total",
			Help: "Total number of app cache hits",
		},
		[]string{"bucket"},
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appcache_misses_total",
			Help: "Total number of app cache misses",
		},
	)

	// CacheSize tracks cache size in bytes by bucket version
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "appcache_size_bytes",
			Help: "Current size of the app cache in bytes",
		},
		[]string{"bucket"},
	)

	// PurgedBuckets tracks stale buckets deleted on version activation
	PurgedBuckets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appcache_purged_buckets_total",
			Help: "Total number of stale cache buckets purged",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appcache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "buckets", "purge"
	)
)
