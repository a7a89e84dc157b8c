package catalog

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SortOrder selects the client-side ordering of a product listing.
type SortOrder string

const (
	// SortRelevance keeps the backend response order.
	SortRelevance SortOrder = "relevance"

	// SortPriceAsc orders by selling price, cheapest first.
	SortPriceAsc SortOrder = "price_asc"

	// SortPriceDesc orders by selling price, most expensive first.
	SortPriceDesc SortOrder = "price_desc"

	// SortNewest orders by creation time, newest first.
	SortNewest SortOrder = "newest"
)

// Filter narrows a product listing. Zero values mean "no constraint".
type Filter struct {
	CategoryID  int
	MinPrice    decimal.Decimal
	MaxPrice    decimal.Decimal
	InStockOnly bool
}

// matches reports whether a product passes the filter.
func (f Filter) matches(p Product) bool {
	if f.CategoryID != 0 && (p.Category == nil || p.Category.ID != f.CategoryID) {
		return false
	}
	if !f.MinPrice.IsZero() && p.SellingPrice.LessThan(f.MinPrice) {
		return false
	}
	if !f.MaxPrice.IsZero() && p.SellingPrice.GreaterThan(f.MaxPrice) {
		return false
	}
	if f.InStockOnly && p.OutOfStock() {
		return false
	}
	return true
}

// Apply composes filter, sort, and pagination over a listing. The input
// slice is never mutated; sorting is stable so equal elements keep the
// backend's relevance order.
func Apply(products []Product, f Filter, order SortOrder, page, limit int) []Product {
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			filtered = append(filtered, p)
		}
	}

	switch order {
	case SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].SellingPrice.LessThan(filtered[j].SellingPrice)
		})
	case SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].SellingPrice.GreaterThan(filtered[j].SellingPrice)
		})
	case SortNewest:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}

	return Paginate(filtered, page, limit)
}

// Paginate windows a listing to the given 1-based page. A limit <= 0
// returns the whole slice; a page beyond the end returns an empty slice.
func Paginate(products []Product, page, limit int) []Product {
	if limit <= 0 {
		return products
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(products) {
		return []Product{}
	}
	end := start + limit
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}
