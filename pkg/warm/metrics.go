package warm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WarmRuns counts completed warming runs.
	WarmRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_warm_runs_total",
		Help: "Total number of completed cache warming runs",
	})

	// WarmedProducts counts products fetched across all warming runs.
	WarmedProducts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_warm_products_total",
		Help: "Total number of products fetched by cache warming",
	})
)
