package session

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faizansiddqui/storefront-client/internal/testutil"
	"github.com/faizansiddqui/storefront-client/pkg/cache"
	"github.com/faizansiddqui/storefront-client/pkg/catalog"
	"github.com/faizansiddqui/storefront-client/pkg/client"
)

func newAPI(t *testing.T, mock *testutil.MockBackend) *client.Client {
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
	return api
}

func TestLoginFlow(t *testing.T) {
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)

	mock.SetHandler("/api/auth/log", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if in["email"] != "zaid@example.com" {
			t.Errorf("email = %q", in["email"])
		}
		w.Write([]byte(`{"status":true}`))
	})
	mock.SetResponse("/api/auth/varify-email", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"status":true,"token":"tok-123","user":{"id":9,"email":"zaid@example.com"}}`,
	})

	store := &MemStore{}
	m := NewManager(newAPI(t, mock), store, nil)
	ctx := context.Background()

	if _, ok := m.Current(); ok {
		t.Fatal("Fresh manager must be logged out")
	}

	if err := m.RequestOTP(ctx, "zaid@example.com"); err != nil {
		t.Fatalf("RequestOTP failed: %v", err)
	}

	user, err := m.VerifyOTP(ctx, "zaid@example.com", "123456")
	if err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
	if user.ID != 9 || user.Email != "zaid@example.com" {
		t.Errorf("user = %+v", user)
	}
	if m.Token() != "tok-123" {
		t.Errorf("Token = %q", m.Token())
	}

	// The verified session is persisted.
	saved, err := store.Load()
	if err != nil {
		t.Fatalf("Session not persisted: %v", err)
	}
	if !saved.IsAuthenticated || saved.AuthToken != "tok-123" {
		t.Errorf("Persisted state = %+v", saved)
	}
}

func TestVerifyOTP_Failure(t *testing.T) {
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)
	mock.SetResponse("/api/auth/varify-email", testutil.MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"message":"Invalid OTP"}`,
	})

	m := NewManager(newAPI(t, mock), &MemStore{}, nil)
	_, err := m.VerifyOTP(context.Background(), "zaid@example.com", "000000")
	if err == nil {
		t.Fatal("Expected error for rejected OTP")
	}
	if got := client.Normalize(err); got != "Invalid OTP" {
		t.Errorf("Normalize = %q, want backend message", got)
	}
	if _, ok := m.Current(); ok {
		t.Error("Failed verification must not log in")
	}
}

func TestLogout_ClearsSessionAndProductCache(t *testing.T) {
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)
	mock.SetResponse("/api/auth/varify-email", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"status":true,"token":"tok","user":{"id":1,"email":"a@b.c"}}`,
	})

	ctx := context.Background()
	productCache := cache.New(ctx, cache.Options{})
	productCache.SetBestSellers(ctx, []catalog.Product{{ID: 1}})

	store := &MemStore{}
	m := NewManager(newAPI(t, mock), store, productCache)

	if _, err := m.VerifyOTP(ctx, "a@b.c", "111111"); err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}

	m.Logout(ctx)

	if _, ok := m.Current(); ok {
		t.Error("Still logged in after Logout")
	}
	if _, err := store.Load(); err != ErrNoSession {
		t.Errorf("Session store after Logout = %v, want ErrNoSession", err)
	}
	if _, ok := productCache.BestSellers(); ok {
		t.Error("Product cache survived Logout")
	}
}

func TestSessionRestoredFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if err := store.Save(State{
		User:            User{ID: 5, Email: "restored@example.com"},
		AuthToken:       "tok-old",
		IsAuthenticated: true,
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)

	m := NewManager(newAPI(t, mock), store, nil)
	user, ok := m.Current()
	if !ok || user.ID != 5 {
		t.Errorf("Restored user = %+v ok=%v", user, ok)
	}
}

func TestRedirectAfterLogin(t *testing.T) {
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)

	m := NewManager(newAPI(t, mock), &MemStore{}, nil)

	m.SetRedirect("/checkout")
	if got := m.TakeRedirect(); got != "/checkout" {
		t.Errorf("TakeRedirect = %q", got)
	}
	if got := m.TakeRedirect(); got != "" {
		t.Errorf("Second TakeRedirect = %q, want empty", got)
	}
}

func TestFileStore_CorruptSessionStartsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := writeFile(path, "{broken"); err != nil {
		t.Fatalf("write: %v", err)
	}

	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)

	m := NewManager(newAPI(t, mock), NewFileStore(path), nil)
	if _, ok := m.Current(); ok {
		t.Error("Corrupt session must start logged out")
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
