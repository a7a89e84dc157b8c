package cache

import (
	"time"

	"github.com/faizansiddqui/storefront-client/pkg/catalog"
)

// listingEntry is one cached product listing. Entries are immutable once
// written; Set replaces them wholesale.
type listingEntry struct {
	Products []catalog.Product `json:"products"`
	CachedAt time.Time         `json:"timestamp"`
}

// detailEntry is one cached product detail record.
type detailEntry struct {
	Detail   catalog.ProductDetail `json:"detail"`
	CachedAt time.Time             `json:"timestamp"`
}

// fresh reports whether the entry is within the freshness window at now.
func (e listingEntry) fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CachedAt) < ttl
}

func (e detailEntry) fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CachedAt) < ttl
}

// snapshot is the durable on-disk/in-redis form of the whole cache: both
// namespaces plus the save timestamp, written as a single blob on every
// mutation.
type snapshot struct {
	Listings map[string]listingEntry `json:"cache"`
	Details  map[int]detailEntry     `json:"productDetailCache"`
	SavedAt  time.Time               `json:"timestamp"`
}
