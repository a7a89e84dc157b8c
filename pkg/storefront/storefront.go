// Package storefront provides the typed customer-facing API over the
// backend: product listings served through the product cache with a
// stale-while-revalidate refresh, product details, search, reviews,
// addresses, and orders.
package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/faizansiddqui/storefront-client/pkg/cache"
	"github.com/faizansiddqui/storefront-client/pkg/catalog"
	"github.com/faizansiddqui/storefront-client/pkg/client"
	"github.com/faizansiddqui/storefront-client/pkg/logging"
)

// refreshTimeout bounds a background cache refresh.
const refreshTimeout = 30 * time.Second

// Service is the customer storefront API.
type Service struct {
	api    *client.Client
	cache  *cache.Cache
	logger zerolog.Logger

	// refreshGroup collapses concurrent background refreshes for the
	// same cache key into one backend request.
	refreshGroup singleflight.Group
}

// New creates a storefront service over the given backend client and
// product cache.
func New(api *client.Client, productCache *cache.Cache) *Service {
	return &Service{
		api:    api,
		cache:  productCache,
		logger: logging.NewLogger("storefront"),
	}
}

// Cache exposes the product cache (for logout clearing and the proxy).
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// pageParams builds the page/limit query used by every listing endpoint.
func pageParams(page, limit int) url.Values {
	return url.Values{
		"page":  []string{strconv.Itoa(page)},
		"limit": []string{strconv.Itoa(limit)},
	}
}

// ListProducts returns one page of the all-products listing.
func (s *Service) ListProducts(ctx context.Context, page, limit int) ([]catalog.Product, error) {
	key := cache.ListingKey{Endpoint: "show-product", Params: pageParams(page, limit)}
	return s.listing(ctx, key, func(ctx context.Context) ([]catalog.Product, error) {
		var envelope listEnvelope
		if err := s.api.GetJSON(ctx, "/user/show-product", key.Params, &envelope); err != nil {
			return nil, err
		}
		return envelope.products(), nil
	})
}

// ProductsByCategory returns one page of a category listing.
func (s *Service) ProductsByCategory(ctx context.Context, categorySlug string, page, limit int) ([]catalog.Product, error) {
	params := pageParams(page, limit)
	key := cache.ListingKey{Endpoint: "get-product-byCategory", Params: cloneWith(params, "category", categorySlug)}
	return s.listing(ctx, key, func(ctx context.Context) ([]catalog.Product, error) {
		var envelope listEnvelope
		path := "/user/get-product-byCategory/" + url.PathEscape(categorySlug)
		if err := s.api.GetJSON(ctx, path, params, &envelope); err != nil {
			return nil, err
		}
		return envelope.products(), nil
	})
}

// BestSellers returns the curated best-sellers collection.
func (s *Service) BestSellers(ctx context.Context) ([]catalog.Product, error) {
	return s.fixedListing(ctx, cache.BestSellersKey(), "/user/show-product",
		url.Values{"sort": []string{"best-sellers"}})
}

// NewArrivals returns the curated new-arrivals collection.
func (s *Service) NewArrivals(ctx context.Context) ([]catalog.Product, error) {
	return s.fixedListing(ctx, cache.NewArrivalsKey(), "/user/show-product",
		url.Values{"sort": []string{"new-arrivals"}})
}

func (s *Service) fixedListing(ctx context.Context, key cache.ListingKey, path string, params url.Values) ([]catalog.Product, error) {
	return s.listing(ctx, key, func(ctx context.Context) ([]catalog.Product, error) {
		var envelope listEnvelope
		if err := s.api.GetJSON(ctx, path, params, &envelope); err != nil {
			return nil, err
		}
		return envelope.products(), nil
	})
}

// SearchQuery is the body of a product search.
type SearchQuery struct {
	Search string `json:"search"`
	Price  string `json:"price,omitempty"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// Search performs a product search. Results are cached under a key derived
// from the full query so repeated searches within the TTL are served
// locally.
func (s *Service) Search(ctx context.Context, query SearchQuery) ([]catalog.Product, error) {
	params := url.Values{
		"search": []string{query.Search},
		"page":   []string{strconv.Itoa(query.Page)},
		"limit":  []string{strconv.Itoa(query.Limit)},
	}
	if query.Price != "" {
		params.Set("price", query.Price)
	}
	key := cache.ListingKey{Endpoint: "search", Params: params}

	return s.listing(ctx, key, func(ctx context.Context) ([]catalog.Product, error) {
		var envelope listEnvelope
		if err := s.api.PostJSON(ctx, "/user/search", query, &envelope); err != nil {
			return nil, err
		}
		return envelope.products(), nil
	})
}

// ProductByID returns the detail record for one product, via the detail
// cache namespace.
func (s *Service) ProductByID(ctx context.Context, id int) (catalog.ProductDetail, error) {
	if detail, ok := s.cache.ProductDetail(id); ok {
		s.refreshDetailInBackground(id)
		return detail, nil
	}

	detail, err := s.fetchDetail(ctx, id)
	if err != nil {
		return catalog.ProductDetail{}, err
	}
	s.cache.SetProductDetail(ctx, id, detail)
	return detail, nil
}

func (s *Service) fetchDetail(ctx context.Context, id int) (catalog.ProductDetail, error) {
	var envelope detailEnvelope
	path := "/user/get-product-byid/" + strconv.Itoa(id)
	if err := s.api.GetJSON(ctx, path, nil, &envelope); err != nil {
		return catalog.ProductDetail{}, err
	}
	detail, ok := envelope.detail()
	if !ok {
		return catalog.ProductDetail{}, &client.APIError{
			StatusCode: 404,
			Class:      client.ErrorClassClient,
		}
	}
	return detail, nil
}

// listing implements the standard pattern used by every listing page:
// serve a fresh cache hit immediately and refresh in the background; on a
// miss, fetch in the foreground and cache; on foreground failure, fall
// back to whatever the cache still holds across all keys.
func (s *Service) listing(ctx context.Context, key cache.ListingKey, fetch func(context.Context) ([]catalog.Product, error)) ([]catalog.Product, error) {
	if products, ok := s.cache.Products(key); ok {
		s.refreshInBackground(key, fetch)
		return products, nil
	}

	products, err := fetch(ctx)
	if err != nil {
		if fallback := s.cache.AllProducts(); len(fallback) > 0 {
			s.logger.Warn().
				Err(err).
				Str("cache_key", key.String()).
				Int("products", len(fallback)).
				Msg("Fetch failed, serving degraded cache fallback")
			return fallback, nil
		}
		return nil, err
	}

	s.cache.SetProducts(ctx, key, products)
	return products, nil
}

// refreshInBackground silently refreshes a listing key. Errors are
// swallowed: the previous cache entry remains authoritative. Singleflight
// collapses concurrent refreshes for the same key.
func (s *Service) refreshInBackground(key cache.ListingKey, fetch func(context.Context) ([]catalog.Product, error)) {
	keyStr := key.String()
	go func() {
		_, _, _ = s.refreshGroup.Do(keyStr, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()

			products, err := fetch(ctx)
			if err != nil {
				s.logger.Debug().
					Err(err).
					Str("cache_key", keyStr).
					Msg("Background refresh failed, keeping cached data")
				return nil, nil
			}
			s.cache.SetProducts(ctx, key, products)
			return nil, nil
		})
	}()
}

func (s *Service) refreshDetailInBackground(id int) {
	keyStr := fmt.Sprintf("detail:%d", id)
	go func() {
		_, _, _ = s.refreshGroup.Do(keyStr, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()

			detail, err := s.fetchDetail(ctx, id)
			if err != nil {
				s.logger.Debug().
					Err(err).
					Int("product_id", id).
					Msg("Background detail refresh failed, keeping cached data")
				return nil, nil
			}
			s.cache.SetProductDetail(ctx, id, detail)
			return nil, nil
		})
	}()
}

// cloneWith copies params and sets one extra pair; listing keys must not
// alias the query values sent to the backend.
func cloneWith(params url.Values, name, value string) url.Values {
	out := make(url.Values, len(params)+1)
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	out.Set(name, value)
	return out
}
