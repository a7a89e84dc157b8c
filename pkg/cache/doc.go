// Package cache provides the product listing and detail cache for the
// storefront client.
//
// The cache keeps two independent namespaces: listings (product slices keyed
// by endpoint + query parameters) and details (single products keyed by
// product id). Both follow the same lifecycle:
//
//   - An entry is created on first successful fetch and replaced wholesale on
//     every subsequent fetch. No entry is ever partially updated.
//   - A read is fresh for FreshTTL (default 5 minutes) after it was written.
//     After that, reads report absent but the data stays in place until
//     overwritten or pruned; AllProducts still sees it for degraded-mode
//     fallback.
//   - Every mutation persists the whole cache as a single serialized blob to
//     the configured SnapshotStore. At construction the snapshot is loaded
//     back, but discarded entirely if older than SnapshotTTL (default 30
//     minutes). Corrupt or unreadable snapshots start the cache empty.
//
// # Basic Usage
//
//	c, err := cache.New(cache.Options{
//		Store: cache.NewFileStore("/var/lib/storefront/productCache.json"),
//	})
//	if err != nil {
//		return err
//	}
//
//	key := cache.ListingKey{
//		Endpoint: "show-product",
//		Params:   url.Values{"page": []string{"1"}, "limit": []string{"20"}},
//	}
//
//	if products, ok := c.Products(key); ok {
//		// fresh hit
//	}
//	c.SetProducts(key, fetched)
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - storefront_cache_hits_total{namespace} - fresh cache hits
//   - storefront_cache_misses_total{namespace} - misses and stale reads
//   - storefront_cache_entries{namespace} - current entry count
//   - storefront_cache_snapshot_errors_total{operation} - snapshot store errors
//   - storefront_cache_snapshot_bytes - size of the last persisted snapshot
package cache
