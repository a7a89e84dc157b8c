// Command storefront-proxy exposes the cached storefront client over HTTP.
// It serves product listings out of the product cache, keeps the cache
// warm, and exports Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/faizansiddqui/storefront-client/pkg/cache"
	"github.com/faizansiddqui/storefront-client/pkg/catalog"
	"github.com/faizansiddqui/storefront-client/pkg/client"
	"github.com/faizansiddqui/storefront-client/pkg/logging"
	"github.com/faizansiddqui/storefront-client/pkg/storefront"
	"github.com/faizansiddqui/storefront-client/pkg/warm"
)

func main() {
	// A missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "false") == "true",
	})

	backendURL := getEnv("BACKEND_URL", "http://localhost:3000")
	port := getEnv("PORT", "8080")

	ctx := context.Background()
	store := snapshotStore(ctx, logger)

	productCache := cache.New(ctx, cache.Options{Store: store})

	api, err := client.New(client.Config{
		BaseURL:   backendURL,
		UserAgent: "storefront-proxy/0.1.0",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create backend client")
	}

	service := storefront.New(api, productCache)

	if getEnv("WARM_ON_START", "false") == "true" {
		warmer := warm.New(service, warm.DefaultConfig())
		go func() {
			if _, err := warmer.Warm(ctx); err != nil {
				logger.Warn().Err(err).Msg("Cache warm failed")
			}
		}()
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/products", listProductsHandler(service)).Methods(http.MethodGet)
	router.HandleFunc("/products/{id:[0-9]+}", productHandler(service)).Methods(http.MethodGet)
	router.HandleFunc("/categories/{slug}/products", categoryHandler(service)).Methods(http.MethodGet)
	router.HandleFunc("/best-sellers", fixedListingHandler(service.BestSellers)).Methods(http.MethodGet)
	router.HandleFunc("/new-arrivals", fixedListingHandler(service.NewArrivals)).Methods(http.MethodGet)

	addr := ":" + port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	logger.Info().Str("addr", addr).Str("backend", backendURL).Msg("Starting storefront proxy")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// snapshotStore picks the durable cache backend: Redis when REDIS_URL is
// set, otherwise a JSON file.
func snapshotStore(ctx context.Context, logger zerolog.Logger) cache.SnapshotStore {
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", redisURL).Msg("Using Redis snapshot store")
		return cache.NewRedisStore(redisClient)
	}

	path := getEnv("CACHE_FILE", "storefront-cache.json")
	logger.Info().Str("path", path).Msg("Using file snapshot store")
	return cache.NewFileStore(path)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func listProductsHandler(service *storefront.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 20)

		products, err := service.ListProducts(r.Context(), page, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"products": products})
	}
}

func productHandler(service *storefront.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		detail, err := service.ProductByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, detail)
	}
}

func categoryHandler(service *storefront.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 20)

		products, err := service.ProductsByCategory(r.Context(), slug, page, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"products": products})
	}
}

func fixedListingHandler(fetch func(context.Context) ([]catalog.Product, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := fetch(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"products": products})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}

// writeError maps API errors to the proxy response: the upstream status
// when known, 502 otherwise, always with the user-facing message.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		status = apiErr.StatusCode
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": client.Normalize(err)})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
