// Package catalog defines the product data model shared by the storefront
// client, the product cache, and the admin console client.
package catalog

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a read-only view of a backend product record.
// The client never mutates products; cache entries are replaced wholesale.
type Product struct {
	ID           int             `json:"product_id"`
	Name         string          `json:"name"`
	Title        string          `json:"title,omitempty"`
	Price        decimal.Decimal `json:"price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Images       ImageSet        `json:"product_image"`
	Quantity     int             `json:"quantity"`
	CreatedAt    time.Time       `json:"createdAt"`
	Category     *CategoryRef    `json:"category,omitempty"`
}

// CategoryRef is an optional reference into the fixed category list.
type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DisplayName prefers the title over the raw name.
func (p Product) DisplayName() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Name
}

// OutOfStock reports whether the product has no remaining stock.
func (p Product) OutOfStock() bool {
	return p.Quantity <= 0
}

// Discounted reports whether the selling price undercuts the list price.
// The backend is expected to guarantee selling_price <= price; this is
// not enforced client-side.
func (p Product) Discounted() bool {
	return p.SellingPrice.LessThan(p.Price)
}

// ImageSet is the canonical ordered list of product media URLs.
//
// The backend serializes the product_image field in three shapes: a single
// URL string, an ordered array of URLs, or an object keyed by arbitrary
// names. The shape is resolved once here, at the ingestion boundary, so no
// caller ever has to type-sniff the field again. Object keys are sorted to
// keep the resulting order deterministic.
type ImageSet []string

// UnmarshalJSON implements json.Unmarshaler for the three wire shapes.
func (s *ImageSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
			return nil
		}
		*s = ImageSet{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		urls := make(ImageSet, 0, len(list))
		for _, u := range list {
			if u != "" {
				urls = append(urls, u)
			}
		}
		*s = urls
		return nil
	}

	var keyed map[string]string
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	urls := make(ImageSet, 0, len(keys))
	for _, k := range keys {
		if keyed[k] != "" {
			urls = append(urls, keyed[k])
		}
	}
	*s = urls
	return nil
}

// Primary returns the first available image URL, or "" when the product
// has no images.
func (s ImageSet) Primary() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Specification is a single name/value row on the product detail page.
type Specification struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductDetail is a single product plus its specifications list, as
// returned by the product-by-id endpoint.
type ProductDetail struct {
	Product        Product         `json:"product"`
	Specifications []Specification `json:"specifications,omitempty"`
}
