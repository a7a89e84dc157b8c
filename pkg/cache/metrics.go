package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks fresh cache hits by namespace (listing, detail)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_hits_total",
			Help: "Total number of fresh product cache hits",
		},
		[]string{"namespace"}, // "listing", "detail"
	)

	// CacheMisses tracks misses and stale reads by namespace
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_misses_total",
			Help: "Total number of product cache misses (absent or stale)",
		},
		[]string{"namespace"},
	)

	// CacheEntries tracks the current number of entries by namespace
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_cache_entries",
			Help: "Current number of product cache entries",
		},
		[]string{"namespace"},
	)

	// SnapshotErrors tracks snapshot store failures
	SnapshotErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_snapshot_errors_total",
			Help: "Total number of snapshot store errors",
		},
		[]string{"operation"}, // "load", "save", "delete"
	)

	// SnapshotBytes tracks the size of the last persisted snapshot
	SnapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cache_snapshot_bytes",
			Help: "Size in bytes of the last persisted cache snapshot",
		},
	)
)
