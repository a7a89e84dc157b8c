package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/faizansiddqui/storefront-client/internal/testutil"
	"github.com/faizansiddqui/storefront-client/pkg/cache"
	"github.com/faizansiddqui/storefront-client/pkg/client"
	"github.com/faizansiddqui/storefront-client/pkg/storefront"
)

func newTestService(t *testing.T, mock *testutil.MockBackend) *storefront.Service {
	t.Helper()
	api, err := client.New(client.Config{
		BaseURL: mock.URL(),
		Retry: client.RetryConfig{
			MaxAttempts:       2,
			InitialBackoff:    time.Millisecond,
			MaxBackoff:        5 * time.Millisecond,
			BackoffMultiplier: 2.0,
		},
	})
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	return storefront.New(api, cache.New(t.Context(), cache.Options{}))
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestListProductsHandler(t *testing.T) {
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)
	mock.SetListingResponse(
		testutil.ProductJSON(1, "Ayatul Kursi Frame", "1499.00", 5),
		testutil.ProductJSON(2, "Wooden Tasbih", "299.00", 12),
	)

	handler := listProductsHandler(newTestService(t, mock))

	req := httptest.NewRequest("GET", "/products?page=1&limit=20", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d", resp.StatusCode)
	}

	var out struct {
		Products []json.RawMessage `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out.Products) != 2 {
		t.Errorf("Products = %d, want 2", len(out.Products))
	}
}

func TestProductHandler_NotFound(t *testing.T) {
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)
	mock.SetResponse("/user/get-product-byid/99", testutil.MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"message":"not found"}`,
	})

	router := mux.NewRouter()
	router.HandleFunc("/products/{id:[0-9]+}", productHandler(newTestService(t, mock)))

	req := httptest.NewRequest("GET", "/products/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", resp.StatusCode)
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out["message"] == "" {
		t.Error("Error response must carry a user-facing message")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)
	// Exercise the client once so request metrics exist.
	service := newTestService(t, mock)
	service.ListProducts(t.Context(), 1, 20)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
	if !strings.Contains(bodyStr, "storefront_requests_total") {
		t.Error("Expected metrics output to contain storefront_requests_total")
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
		want int
	}{
		{"present", "/products?page=3", "page", 3},
		{"absent_uses_fallback", "/products", "page", 1},
		{"garbage_uses_fallback", "/products?page=abc", "page", 1},
		{"zero_uses_fallback", "/products?page=0", "page", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			if got := queryInt(req, tt.key, 1); got != tt.want {
				t.Errorf("queryInt = %d, want %d", got, tt.want)
			}
		})
	}
}
