// Package metrics provides the centralized Prometheus registry for the
// storefront client. All metrics are defined in their respective packages
// (client, cache, warm) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the storefront
// client. All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - storefront_cache_hits_total{namespace} (Counter): Cache hits by namespace (listing, detail)
//   - storefront_cache_misses_total{namespace} (Counter): Cache misses by namespace
//   - storefront_cache_entries{namespace} (Gauge): Current entry count by namespace
//   - storefront_cache_snapshot_errors_total{operation} (Counter): Snapshot store errors (load, save, delete)
//   - storefront_cache_snapshot_bytes (Gauge): Size of the last written snapshot
//
// Request Metrics (pkg/client):
//   - storefront_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - storefront_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - storefront_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - storefront_retries_total{error_class} (Counter): Retry attempts by error class
//   - storefront_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - storefront_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Warmer Metrics (pkg/warm):
//   - storefront_warm_runs_total (Counter): Completed cache warming runs
//   - storefront_warm_products_total (Counter): Products fetched by warming runs
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(storefront_cache_hits_total[5m])) /
//   (sum(rate(storefront_cache_hits_total[5m])) + sum(rate(storefront_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(storefront_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(storefront_request_duration_seconds_bucket[5m]))
