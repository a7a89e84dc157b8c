package cache

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/rs/zerolog"

	"github.com/faizansiddqui/storefront-client/pkg/catalog"
	"github.com/faizansiddqui/storefront-client/pkg/logging"
)

const (
	// DefaultFreshTTL is how long a cache entry is served as fresh.
	DefaultFreshTTL = 5 * time.Minute

	// DefaultSnapshotTTL is how long a persisted snapshot is trusted at
	// load time before being discarded wholesale.
	DefaultSnapshotTTL = 30 * time.Minute
)

// Options configures a Cache. The zero value of every field has a usable
// default, so Options{} yields an in-memory cache on the wall clock.
type Options struct {
	// Store persists the cache between runs. Defaults to NopStore.
	Store SnapshotStore

	// Clock supplies the current time. Defaults to the wall clock.
	// Tests inject a fake clock here.
	Clock clock.Clock

	// FreshTTL overrides DefaultFreshTTL.
	FreshTTL time.Duration

	// SnapshotTTL overrides DefaultSnapshotTTL.
	SnapshotTTL time.Duration

	// Logger overrides the default component logger.
	Logger *zerolog.Logger
}

// Cache is the product listing and detail cache. All methods are safe for
// concurrent use. Concurrent writers for the same key race benignly: the
// last write wins and replaces the entry in full.
type Cache struct {
	mu       sync.RWMutex
	listings map[string]listingEntry
	details  map[int]detailEntry

	store       SnapshotStore
	clock       clock.Clock
	freshTTL    time.Duration
	snapshotTTL time.Duration
	logger      zerolog.Logger
}

// New creates a Cache and loads the persisted snapshot, if any. A missing,
// corrupt, or expired snapshot starts the cache empty; snapshot problems
// are never surfaced as errors.
func New(ctx context.Context, opts Options) *Cache {
	if opts.Store == nil {
		opts.Store = NopStore{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if opts.FreshTTL <= 0 {
		opts.FreshTTL = DefaultFreshTTL
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = DefaultSnapshotTTL
	}

	logger := logging.NewLogger("product-cache")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	c := &Cache{
		listings:    make(map[string]listingEntry),
		details:     make(map[int]detailEntry),
		store:       opts.Store,
		clock:       opts.Clock,
		freshTTL:    opts.FreshTTL,
		snapshotTTL: opts.SnapshotTTL,
		logger:      logger,
	}

	c.load(ctx)
	c.updateGauges()

	return c
}

// load restores the cache from the snapshot store. Failures of any kind
// leave the cache empty.
func (c *Cache) load(ctx context.Context) {
	data, err := c.store.Load(ctx)
	if err != nil {
		if err != ErrNoSnapshot {
			SnapshotErrors.WithLabelValues("load").Inc()
			c.logger.Warn().Err(err).Msg("Snapshot load failed, starting empty")
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		SnapshotErrors.WithLabelValues("load").Inc()
		c.logger.Warn().Err(err).Msg("Corrupt snapshot discarded, starting empty")
		return
	}

	age := c.clock.Now().Sub(snap.SavedAt)
	if age >= c.snapshotTTL {
		c.logger.Info().
			Dur("age", age).
			Msg("Snapshot older than trust horizon, discarded")
		return
	}

	if snap.Listings != nil {
		c.listings = snap.Listings
	}
	if snap.Details != nil {
		c.details = snap.Details
	}

	c.logger.Info().
		Int("listings", len(c.listings)).
		Int("details", len(c.details)).
		Dur("age", age).
		Msg("Snapshot restored")
}

// Products returns the cached listing for key if it is still fresh.
// Stale entries report absent but are not deleted; they remain reachable
// through AllProducts until overwritten or pruned.
func (c *Cache) Products(key ListingKey) ([]catalog.Product, bool) {
	return c.products(key.String())
}

func (c *Cache) products(key string) ([]catalog.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.listings[key]
	if !ok || !entry.fresh(c.clock.Now(), c.freshTTL) {
		CacheMisses.WithLabelValues("listing").Inc()
		return nil, false
	}

	CacheHits.WithLabelValues("listing").Inc()
	return entry.Products, true
}

// SetProducts replaces the listing for key and persists the cache.
func (c *Cache) SetProducts(ctx context.Context, key ListingKey, products []catalog.Product) {
	c.setProducts(ctx, key.String(), products)
}

func (c *Cache) setProducts(ctx context.Context, key string, products []catalog.Product) {
	c.mu.Lock()
	c.listings[key] = listingEntry{
		Products: products,
		CachedAt: c.clock.Now(),
	}
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.updateGauges()
	c.logger.Debug().
		Str("cache_key", key).
		Int("products", len(products)).
		Msg("Listing cached")
}

// BestSellers returns the cached best-sellers collection.
func (c *Cache) BestSellers() ([]catalog.Product, bool) {
	return c.products(keyBestSellers)
}

// SetBestSellers replaces the best-sellers collection.
func (c *Cache) SetBestSellers(ctx context.Context, products []catalog.Product) {
	c.setProducts(ctx, keyBestSellers, products)
}

// NewArrivals returns the cached new-arrivals collection.
func (c *Cache) NewArrivals() ([]catalog.Product, bool) {
	return c.products(keyNewArrivals)
}

// SetNewArrivals replaces the new-arrivals collection.
func (c *Cache) SetNewArrivals(ctx context.Context, products []catalog.Product) {
	c.setProducts(ctx, keyNewArrivals, products)
}

// ProductDetail returns the cached detail record for a product id if it is
// still fresh.
func (c *Cache) ProductDetail(id int) (catalog.ProductDetail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.details[id]
	if !ok || !entry.fresh(c.clock.Now(), c.freshTTL) {
		CacheMisses.WithLabelValues("detail").Inc()
		return catalog.ProductDetail{}, false
	}

	CacheHits.WithLabelValues("detail").Inc()
	return entry.Detail, true
}

// SetProductDetail replaces the detail record for a product id and
// persists the cache.
func (c *Cache) SetProductDetail(ctx context.Context, id int, detail catalog.ProductDetail) {
	c.mu.Lock()
	c.details[id] = detailEntry{
		Detail:   detail,
		CachedAt: c.clock.Now(),
	}
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.updateGauges()
}

// AllProducts flattens every cache entry, fresh or stale, into one list
// de-duplicated by product id with the last-seen record winning. It exists
// for the degraded-mode fallback when a fetch fails and no single key is
// fresh; listing order across keys carries no meaning.
func (c *Cache) AllProducts() []catalog.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.listings))
	for key := range c.listings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var merged []catalog.Product
	index := make(map[int]int)

	add := func(p catalog.Product) {
		if pos, seen := index[p.ID]; seen {
			merged[pos] = p
			return
		}
		index[p.ID] = len(merged)
		merged = append(merged, p)
	}

	for _, key := range keys {
		for _, p := range c.listings[key].Products {
			add(p)
		}
	}

	ids := make([]int, 0, len(c.details))
	for id := range c.details {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		add(c.details[id].Detail.Product)
	}

	return merged
}

// Invalidate drops a single listing entry and persists the cache.
func (c *Cache) Invalidate(ctx context.Context, key ListingKey) {
	c.mu.Lock()
	delete(c.listings, key.String())
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.updateGauges()
}

// InvalidateListings drops every listing entry and persists the cache.
// Detail entries are kept.
func (c *Cache) InvalidateListings(ctx context.Context) {
	c.mu.Lock()
	c.listings = make(map[string]listingEntry)
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.updateGauges()
}

// InvalidateProduct drops the detail entry for a product id and persists
// the cache.
func (c *Cache) InvalidateProduct(ctx context.Context, id int) {
	c.mu.Lock()
	delete(c.details, id)
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.updateGauges()
}

// Clear empties both namespaces and deletes the durable snapshot. Calling
// it on an already empty cache is a no-op.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.listings = make(map[string]listingEntry)
	c.details = make(map[int]detailEntry)
	c.mu.Unlock()

	if err := c.store.Delete(ctx); err != nil {
		SnapshotErrors.WithLabelValues("delete").Inc()
		c.logger.Warn().Err(err).Msg("Snapshot delete failed")
	}

	c.updateGauges()
	c.logger.Info().Msg("Product cache cleared")
}

// ClearExpired prunes entries past the freshness window from both
// namespaces and persists the pruned cache.
func (c *Cache) ClearExpired(ctx context.Context) {
	now := c.clock.Now()
	pruned := 0

	c.mu.Lock()
	for key, entry := range c.listings {
		if !entry.fresh(now, c.freshTTL) {
			delete(c.listings, key)
			pruned++
		}
	}
	for id, entry := range c.details {
		if !entry.fresh(now, c.freshTTL) {
			delete(c.details, id)
			pruned++
		}
	}
	if pruned > 0 {
		c.persistLocked(ctx)
	}
	c.mu.Unlock()

	c.updateGauges()
	if pruned > 0 {
		c.logger.Debug().Int("pruned", pruned).Msg("Expired cache entries pruned")
	}
}

// persistLocked serializes both namespaces and writes them to the snapshot
// store as a single blob. Store failures are absorbed: the in-memory cache
// stays authoritative. Callers must hold c.mu.
func (c *Cache) persistLocked(ctx context.Context) {
	snap := snapshot{
		Listings: c.listings,
		Details:  c.details,
		SavedAt:  c.clock.Now(),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		SnapshotErrors.WithLabelValues("save").Inc()
		c.logger.Error().Err(err).Msg("Snapshot marshal failed")
		return
	}

	if err := c.store.Save(ctx, data); err != nil {
		SnapshotErrors.WithLabelValues("save").Inc()
		c.logger.Warn().Err(err).Msg("Snapshot save failed, cache continues in memory")
		return
	}

	SnapshotBytes.Set(float64(len(data)))
}

func (c *Cache) updateGauges() {
	c.mu.RLock()
	listings := len(c.listings)
	details := len(c.details)
	c.mu.RUnlock()

	CacheEntries.WithLabelValues("listing").Set(float64(listings))
	CacheEntries.WithLabelValues("detail").Set(float64(details))
}
