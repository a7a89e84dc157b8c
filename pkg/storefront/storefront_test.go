package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/faizansiddqui/storefront-client/internal/testutil"
	"github.com/faizansiddqui/storefront-client/pkg/cache"
	"github.com/faizansiddqui/storefront-client/pkg/client"
)

func newService(t *testing.T, mock *testutil.MockBackend) *Service {
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

	productCache := cache.New(context.Background(), cache.Options{})
	return New(api, productCache)
}

func setupMock(t *testing.T) *testutil.MockBackend {
	t.Helper()
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)
	return mock
}

func TestListProducts_FetchesAndCaches(t *testing.T) {
	mock := setupMock(t)
	mock.SetListingResponse(
		testutil.ProductJSON(1, "Prayer Rug", "499.00", 3),
		testutil.ProductJSON(2, "Brass Lantern", "899.00", 0),
	)

	svc := newService(t, mock)
	ctx := context.Background()

	products, err := svc.ListProducts(ctx, 1, 20)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("Got %d products, want 2", len(products))
	}
	if products[0].ID != 1 || products[1].ID != 2 {
		t.Errorf("Unexpected ids: %d, %d", products[0].ID, products[1].ID)
	}
	if !products[1].OutOfStock() {
		t.Error("Product 2 should be out of stock")
	}
	if mock.GetPathCount("/user/show-product") != 1 {
		t.Errorf("Expected 1 backend call, got %d", mock.GetPathCount("/user/show-product"))
	}

	// Second call inside the TTL must be served from cache; the
	// background refresh is the only extra backend traffic allowed.
	if _, err := svc.ListProducts(ctx, 1, 20); err != nil {
		t.Fatalf("Second ListProducts failed: %v", err)
	}

	waitFor(t, func() bool { return mock.GetPathCount("/user/show-product") >= 2 },
		"background refresh never fired")
}

func TestListProducts_EnvelopeVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "data_array",
			body: `{"status":true,"data":[` + testutil.ProductJSON(5, "Frame", "999.00", 1) + `]}`,
		},
		{
			name: "nested_products",
			body: `{"status":true,"data":{"Products":[` + testutil.ProductJSON(5, "Frame", "999.00", 1) + `]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := setupMock(t)
			mock.SetResponse("/user/show-product", testutil.MockResponse{
				StatusCode: http.StatusOK,
				Body:       tt.body,
			})

			svc := newService(t, mock)
			products, err := svc.ListProducts(context.Background(), 1, 20)
			if err != nil {
				t.Fatalf("ListProducts failed: %v", err)
			}
			if len(products) != 1 || products[0].ID != 5 {
				t.Errorf("products = %v", products)
			}
		})
	}
}

func TestListProducts_DegradedFallback(t *testing.T) {
	mock := setupMock(t)
	mock.SetListingResponse(testutil.ProductJSON(1, "Prayer Rug", "499.00", 3))

	svc := newService(t, mock)
	ctx := context.Background()

	// Seed the cache via a successful fetch.
	if _, err := svc.ListProducts(ctx, 1, 20); err != nil {
		t.Fatalf("Seed fetch failed: %v", err)
	}

	// Backend goes down; a different key misses the cache but the
	// degraded fallback serves everything the cache still holds.
	mock.SetResponse("/user/show-product", testutil.MockResponse{
		StatusCode: http.StatusServiceUnavailable,
	})

	products, err := svc.ListProducts(ctx, 2, 20)
	if err != nil {
		t.Fatalf("Expected degraded fallback, got error: %v", err)
	}
	if len(products) != 1 || products[0].ID != 1 {
		t.Errorf("Fallback products = %v", products)
	}
}

func TestListProducts_EmptyCacheErrorSurfaces(t *testing.T) {
	mock := setupMock(t)
	mock.SetResponse("/user/show-product", testutil.MockResponse{
		StatusCode: http.StatusServiceUnavailable,
	})

	svc := newService(t, mock)
	_, err := svc.ListProducts(context.Background(), 1, 20)
	if err == nil {
		t.Fatal("Expected error with empty cache and failing backend")
	}
	if got := client.Normalize(err); got != client.MsgUnavailable {
		t.Errorf("Normalize = %q, want %q", got, client.MsgUnavailable)
	}
}

func TestProductByID_CachesDetail(t *testing.T) {
	mock := setupMock(t)
	mock.SetResponse("/user/get-product-byid/7", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"status":true,"data":[` + testutil.ProductJSON(7, "Quran Stand", "1299.00", 2) + `]}`,
	})

	svc := newService(t, mock)
	ctx := context.Background()

	detail, err := svc.ProductByID(ctx, 7)
	if err != nil {
		t.Fatalf("ProductByID failed: %v", err)
	}
	if detail.Product.ID != 7 {
		t.Errorf("detail.Product.ID = %d", detail.Product.ID)
	}

	// Cached on second call.
	if _, err := svc.ProductByID(ctx, 7); err != nil {
		t.Fatalf("Second ProductByID failed: %v", err)
	}
	if got := mock.GetPathCount("/user/get-product-byid/7"); got < 1 {
		t.Errorf("Backend calls = %d", got)
	}
}

func TestProductByID_EmptyDataIsNotFound(t *testing.T) {
	mock := setupMock(t)
	mock.SetResponse("/user/get-product-byid/99", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"status":false,"data":[]}`,
	})

	svc := newService(t, mock)
	_, err := svc.ProductByID(context.Background(), 99)
	if err == nil {
		t.Fatal("Expected not-found error")
	}
	if got := client.Normalize(err); got != client.MsgNotFound {
		t.Errorf("Normalize = %q, want %q", got, client.MsgNotFound)
	}
}

func TestSearch_PostsQueryAndCaches(t *testing.T) {
	mock := setupMock(t)
	mock.SetHandler("/user/search", func(w http.ResponseWriter, r *http.Request) {
		var in SearchQuery
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("Decode search body: %v", err)
		}
		if in.Search != "lantern" || in.Page != 1 {
			t.Errorf("Search body = %+v", in)
		}
		w.Write([]byte(`{"status":true,"products":[` + testutil.ProductJSON(2, "Brass Lantern", "899.00", 4) + `]}`))
	})

	svc := newService(t, mock)
	ctx := context.Background()

	query := SearchQuery{Search: "lantern", Page: 1, Limit: 10}
	products, err := svc.Search(ctx, query)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != 2 {
		t.Errorf("Search products = %v", products)
	}

	// Repeat within the TTL is a cache hit.
	if _, err := svc.Search(ctx, query); err != nil {
		t.Fatalf("Second search failed: %v", err)
	}
}

func TestBestSellersAndNewArrivals_SeparateKeys(t *testing.T) {
	mock := setupMock(t)
	mock.SetListingResponse(testutil.ProductJSON(1, "Prayer Rug", "499.00", 3))

	svc := newService(t, mock)
	ctx := context.Background()

	if _, err := svc.BestSellers(ctx); err != nil {
		t.Fatalf("BestSellers failed: %v", err)
	}
	if _, err := svc.NewArrivals(ctx); err != nil {
		t.Fatalf("NewArrivals failed: %v", err)
	}

	// Two distinct keys mean two backend fetches even though both hit
	// the same endpoint.
	if got := mock.GetPathCount("/user/show-product"); got != 2 {
		t.Errorf("Backend calls = %d, want 2", got)
	}
}

func TestReviews_EnvelopeVariants(t *testing.T) {
	mock := setupMock(t)
	mock.SetResponse("/user/get-product-reviews/3", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"reviews":[{"id":1,"product_id":3,"user_name":"Aisha","rating":5,"comment":"Beautiful"}]}`,
	})

	svc := newService(t, mock)
	reviews, err := svc.Reviews(context.Background(), 3)
	if err != nil {
		t.Fatalf("Reviews failed: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Rating != 5 {
		t.Errorf("reviews = %v", reviews)
	}
}

func TestSubmitReview_InvalidatesDetail(t *testing.T) {
	mock := setupMock(t)
	mock.SetResponse("/user/get-product-byid/3", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"status":true,"data":[` + testutil.ProductJSON(3, "Frame", "999.00", 1) + `]}`,
	})

	svc := newService(t, mock)
	ctx := context.Background()

	if _, err := svc.ProductByID(ctx, 3); err != nil {
		t.Fatalf("Seed detail failed: %v", err)
	}
	if _, ok := svc.Cache().ProductDetail(3); !ok {
		t.Fatal("Detail not cached")
	}

	err := svc.SubmitReview(ctx, ReviewInput{ProductID: 3, Rating: 4, Comment: "Lovely"})
	if err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}

	if _, ok := svc.Cache().ProductDetail(3); ok {
		t.Error("Detail cache entry survived review submission")
	}
}

func TestCreateOrder_FillsIdempotencyKey(t *testing.T) {
	mock := setupMock(t)
	mock.SetHandler("/user/create-order", func(w http.ResponseWriter, r *http.Request) {
		var in OrderInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("Decode order body: %v", err)
		}
		if in.IdempotencyKey == "" {
			t.Error("Idempotency key not filled")
		}
		w.Write([]byte(`{"order":{"id":42,"status":"pending"}}`))
	})

	svc := newService(t, mock)
	order, err := svc.CreateOrder(context.Background(), OrderInput{AddressID: 1})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.ID != 42 || order.Status != "pending" {
		t.Errorf("order = %+v", order)
	}
}

func TestAddresses(t *testing.T) {
	mock := setupMock(t)
	mock.SetResponse("/user/get-user-addresess", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data":[{"id":1,"full_name":"Zaid","city":"Lucknow","postal_code":"226001"}]}`,
	})

	svc := newService(t, mock)
	addresses, err := svc.Addresses(context.Background())
	if err != nil {
		t.Fatalf("Addresses failed: %v", err)
	}
	if len(addresses) != 1 || addresses[0].City != "Lucknow" {
		t.Errorf("addresses = %v", addresses)
	}
}

// waitFor polls cond for up to two seconds.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}
