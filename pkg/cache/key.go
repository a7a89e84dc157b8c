package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Well-known listing keys for curated collections.
const (
	keyBestSellers = "bestSellers"
	keyNewArrivals = "newArrivals"
)

// ListingKey identifies one cached product listing.
type ListingKey struct {
	// Endpoint is the backend listing endpoint name
	// (e.g., "show-product", "get-product-byCategory").
	Endpoint string

	// Params are the query parameters of the listing request
	// (page, limit, category, search term).
	Params url.Values
}

// String generates a deterministic cache key string.
// Format: endpoint:param1=val1:param2=val2 with params sorted by name.
//
// Example:
//
//	show-product:limit=20:page=1
func (k ListingKey) String() string {
	parts := []string{strings.Trim(k.Endpoint, "/")}

	if len(k.Params) > 0 {
		names := make([]string, 0, len(k.Params))
		for name := range k.Params {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Params.Get(name)))
		}
	}

	return strings.Join(parts, ":")
}

// BestSellersKey returns the fixed key for the best-sellers collection.
func BestSellersKey() ListingKey {
	return ListingKey{Endpoint: keyBestSellers}
}

// NewArrivalsKey returns the fixed key for the new-arrivals collection.
func NewArrivalsKey() ListingKey {
	return ListingKey{Endpoint: keyNewArrivals}
}
