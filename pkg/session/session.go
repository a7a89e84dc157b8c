// Package session holds the logged-in user's identity and the OTP login
// flow. Session state is persisted to durable local storage under the same
// keys the web client uses (user, authToken, isAuthenticated,
// redirectAfterLogin) so a restart resumes the session.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/faizansiddqui/storefront-client/pkg/cache"
	"github.com/faizansiddqui/storefront-client/pkg/client"
	"github.com/faizansiddqui/storefront-client/pkg/logging"
)

// User is the logged-in identity derived from a verified OTP.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

// State is the persisted session state.
type State struct {
	User               User   `json:"user"`
	AuthToken          string `json:"authToken"`
	IsAuthenticated    bool   `json:"isAuthenticated"`
	RedirectAfterLogin string `json:"redirectAfterLogin,omitempty"`
}

// Manager owns the session lifecycle. All methods are safe for concurrent
// use.
type Manager struct {
	api    *client.Client
	store  Store
	cache  *cache.Cache
	logger zerolog.Logger

	mu    sync.RWMutex
	state State
}

// NewManager creates a session manager and restores any persisted session.
// An unreadable or corrupt session store starts logged out.
func NewManager(api *client.Client, store Store, productCache *cache.Cache) *Manager {
	m := &Manager{
		api:    api,
		store:  store,
		cache:  productCache,
		logger: logging.NewLogger("session"),
	}

	state, err := store.Load()
	if err != nil {
		if err != ErrNoSession {
			m.logger.Warn().Err(err).Msg("Session restore failed, starting logged out")
		}
		return m
	}
	m.state = state
	if state.IsAuthenticated {
		m.logger.Info().Str("email", state.User.Email).Msg("Session restored")
	}
	return m
}

// RequestOTP asks the backend to send a one-time password to email.
func (m *Manager) RequestOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := m.api.PostJSON(ctx, "/api/auth/log", body, nil); err != nil {
		return fmt.Errorf("request otp: %w", err)
	}
	return nil
}

// verifyResponse is the OTP verification envelope. The endpoint path keeps
// the backend's spelling.
type verifyResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// VerifyOTP exchanges the OTP for a session token and persists the
// resulting state.
func (m *Manager) VerifyOTP(ctx context.Context, email, otp string) (User, error) {
	body := map[string]string{"email": email, "otp": otp}

	var resp verifyResponse
	if err := m.api.PostJSON(ctx, "/api/auth/varify-email", body, &resp); err != nil {
		return User{}, fmt.Errorf("verify otp: %w", err)
	}

	m.mu.Lock()
	m.state.User = resp.User
	m.state.AuthToken = resp.Token
	m.state.IsAuthenticated = true
	state := m.state
	m.mu.Unlock()

	if err := m.store.Save(state); err != nil {
		// Session works in memory; only persistence is degraded.
		m.logger.Warn().Err(err).Msg("Session save failed")
	}

	m.logger.Info().Str("email", resp.User.Email).Msg("User logged in")
	return resp.User, nil
}

// Logout drops the session and clears the product cache, removing both
// durable copies.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()

	if err := m.store.Delete(); err != nil {
		m.logger.Warn().Err(err).Msg("Session delete failed")
	}
	if m.cache != nil {
		m.cache.Clear(ctx)
	}

	m.logger.Info().Msg("User logged out")
}

// Current returns the logged-in user, if any.
func (m *Manager) Current() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.User, m.state.IsAuthenticated
}

// Token returns the session token, empty when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.AuthToken
}

// SetRedirect records the path to return to after a forced login.
func (m *Manager) SetRedirect(path string) {
	m.mu.Lock()
	m.state.RedirectAfterLogin = path
	state := m.state
	m.mu.Unlock()

	if err := m.store.Save(state); err != nil {
		m.logger.Warn().Err(err).Msg("Session save failed")
	}
}

// TakeRedirect returns and clears the stored redirect path.
func (m *Manager) TakeRedirect() string {
	m.mu.Lock()
	path := m.state.RedirectAfterLogin
	m.state.RedirectAfterLogin = ""
	state := m.state
	m.mu.Unlock()

	if path != "" {
		if err := m.store.Save(state); err != nil {
			m.logger.Warn().Err(err).Msg("Session save failed")
		}
	}
	return path
}
