// Package warm pre-populates the product cache by fetching listing pages
// in parallel with a worker pool. Failed pages are skipped, a partially
// warmed cache is still a warmer cache.
package warm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/faizansiddqui/storefront-client/pkg/catalog"
	"github.com/faizansiddqui/storefront-client/pkg/logging"
)

// Lister fetches one listing page. *storefront.Service satisfies it;
// fetching through the service also writes the page into the cache.
type Lister interface {
	ListProducts(ctx context.Context, page, limit int) ([]catalog.Product, error)
	BestSellers(ctx context.Context) ([]catalog.Product, error)
	NewArrivals(ctx context.Context) ([]catalog.Product, error)
}

// Config holds warmer configuration.
type Config struct {
	// Workers is the number of parallel page fetchers.
	Workers int
	// PageSize is the listing page size.
	PageSize int
	// MaxPages caps how many pages are attempted. The warmer stops
	// early once a page comes back empty.
	MaxPages int
	// Timeout bounds a single page fetch.
	Timeout time.Duration
}

// DefaultConfig returns config suited to the storefront backend.
func DefaultConfig() Config {
	return Config{
		Workers:  4,
		PageSize: 20,
		MaxPages: 50,
		Timeout:  15 * time.Second,
	}
}

// Result summarizes a warming run.
type Result struct {
	Pages    int
	Products int
	Failed   int
}

// Warmer fills the product cache ahead of demand.
type Warmer struct {
	lister Lister
	config Config
	logger zerolog.Logger
}

// New creates a warmer. Zero config fields fall back to DefaultConfig
// values.
func New(lister Lister, config Config) *Warmer {
	defaults := DefaultConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}
	if config.MaxPages <= 0 {
		config.MaxPages = defaults.MaxPages
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &Warmer{
		lister: lister,
		config: config,
		logger: logging.NewLogger("warm"),
	}
}

// Warm fetches the fixed listings and all product pages up to the first
// empty one. Page failures are logged and counted, not fatal; Warm only
// returns an error when the very first page fails, which means the
// backend is unreachable.
func (w *Warmer) Warm(ctx context.Context) (Result, error) {
	start := time.Now()
	var result Result

	// First page decides whether the backend is reachable at all.
	first, err := w.lister.ListProducts(ctx, 1, w.config.PageSize)
	if err != nil {
		return result, fmt.Errorf("warm first page: %w", err)
	}
	result.Pages = 1
	result.Products = len(first)

	if len(first) == w.config.PageSize && w.config.MaxPages > 1 {
		pages, products, failed := w.fetchRemaining(ctx)
		result.Pages += pages
		result.Products += products
		result.Failed += failed
	}

	for _, fixed := range []struct {
		name  string
		fetch func(context.Context) ([]catalog.Product, error)
	}{
		{"best_sellers", w.lister.BestSellers},
		{"new_arrivals", w.lister.NewArrivals},
	} {
		fetchCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
		products, err := fixed.fetch(fetchCtx)
		cancel()
		if err != nil {
			w.logger.Warn().Err(err).Str("listing", fixed.name).Msg("Fixed listing warm failed")
			result.Failed++
			continue
		}
		result.Products += len(products)
	}

	w.logger.Info().
		Int("pages", result.Pages).
		Int("products", result.Products).
		Int("failed", result.Failed).
		Dur("duration", time.Since(start)).
		Msg("Cache warm complete")

	WarmRuns.Inc()
	WarmedProducts.Add(float64(result.Products))
	return result, nil
}

// fetchRemaining runs the worker pool over pages 2..MaxPages. An empty
// page marks the end of the catalog; later queued pages still run but
// come back empty and cost one round trip each.
func (w *Warmer) fetchRemaining(ctx context.Context) (pages, products, failed int) {
	type pageResult struct {
		page  int
		count int
		err   error
	}

	pageQueue := make(chan int, w.config.MaxPages)
	results := make(chan pageResult, w.config.MaxPages)

	go func() {
		for page := 2; page <= w.config.MaxPages; page++ {
			pageQueue <- page
		}
		close(pageQueue)
	}()

	var wg sync.WaitGroup
	for i := 0; i < w.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range pageQueue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				pageCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
				fetched, err := w.lister.ListProducts(pageCtx, page, w.config.PageSize)
				cancel()
				results <- pageResult{page: page, count: len(fetched), err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			w.logger.Warn().Err(r.err).Int("page", r.page).Msg("Page warm failed")
			failed++
			continue
		}
		if r.count == 0 {
			continue
		}
		pages++
		products += r.count
	}
	return pages, products, failed
}
