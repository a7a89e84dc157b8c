// Package testutil provides testing utilities for the storefront client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock backend endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockBackend is a configurable mock of the storefront REST backend.
type MockBackend struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	PathCounts        map[string]int
	LastRequestHeader http.Header
}

// NewMockBackend creates a new mock backend server.
func NewMockBackend() *MockBackend {
	mock := &MockBackend{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		PathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.PathCounts[r.URL.Path]++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockBackend) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PathCounts = make(map[string]int)
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockBackend) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockBackend) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if resp.StatusCode != 0 {
			w.WriteHeader(resp.StatusCode)
		}
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetListingResponse configures the all-products listing endpoint with a
// {status, products} envelope built from the given product JSON objects.
func (m *MockBackend) SetListingResponse(productJSON ...string) {
	body := `{"status":true,"products":[`
	for i, p := range productJSON {
		if i > 0 {
			body += ","
		}
		body += p
	}
	body += `]}`
	m.SetResponse("/user/show-product", MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockBackend) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns the number of requests made to one path.
func (m *MockBackend) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PathCounts[path]
}

// ProductJSON renders a minimal valid product object for envelope bodies.
func ProductJSON(id int, name string, price string, quantity int) string {
	return fmt.Sprintf(
		`{"product_id":%d,"name":%q,"price":%s,"selling_price":%s,"product_image":"https://cdn.example.com/%d.jpg","quantity":%d,"createdAt":"2026-08-31T00:00:00Z"}`,
		id, name, price, price, id, quantity)
}

// defaultHandler returns an empty success envelope.
func (m *MockBackend) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":true,"data":[]}`)
}
