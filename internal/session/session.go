// Package session owns the authenticated identity: the bearer token, the
// current user, and the transitions between signed-out and signed-in.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"restaurant-terminal/internal/api"
	"restaurant-terminal/internal/auth"
	"restaurant-terminal/internal/state"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidRole        = errors.New("role must be either admin or waiter")
)

type Manager struct {
	api   *api.Client
	store *state.Store
	log   *zap.Logger

	mu   sync.RWMutex
	user *api.User
}

func New(client *api.Client, store *state.Store, log *zap.Logger) *Manager {
	m := &Manager{api: client, store: store, log: log}
	// The client clears its own token on a 401; the hook clears the rest
	// of the session so the next render sees a signed-out state.
	client.OnSessionExpired(m.handleExpiry)
	return m
}

func (m *Manager) handleExpiry() {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	m.clearPersisted()
	m.log.Info("session expired, signed out")
}

func (m *Manager) CurrentUser() (api.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return api.User{}, false
	}
	return *m.user, true
}

func (m *Manager) Authenticated() bool {
	_, ok := m.CurrentUser()
	return ok
}

func (m *Manager) IsAdmin() bool {
	user, ok := m.CurrentUser()
	return ok && user.Role == auth.RoleAdmin
}

// Login authenticates and stores the session. A failed login leaves any
// previously held session untouched.
func (m *Manager) Login(ctx context.Context, username, password string) (api.User, error) {
	if username == "" || password == "" {
		return api.User{}, ErrMissingCredentials
	}

	result, err := m.api.Login(ctx, username, password)
	if err != nil {
		return api.User{}, err
	}

	m.api.SetToken(result.AccessToken)
	if err := m.store.SetToken(result.AccessToken); err != nil {
		m.log.Warn("persisting token failed", zap.Error(err))
	}

	m.mu.Lock()
	user := result.User
	m.user = &user
	m.mu.Unlock()

	m.log.Info("signed in", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}

// Resume restores a persisted session with a single who-am-I call. Any
// failure clears the persisted token and reports no session; there is no
// retry on this path.
func (m *Manager) Resume(ctx context.Context) (api.User, bool) {
	token := m.store.Token()
	if token == "" {
		return api.User{}, false
	}
	if auth.TokenExpired(token) {
		m.log.Info("persisted token already expired, skipping resume")
		m.clearPersisted()
		return api.User{}, false
	}

	m.api.SetToken(token)
	user, err := m.api.Me(ctx)
	if err != nil {
		m.log.Info("session resume failed", zap.Error(err))
		m.api.SetToken("")
		m.clearPersisted()
		return api.User{}, false
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()

	m.log.Info("session resumed", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, true
}

// Logout drops the session from memory and disk. Safe to call repeatedly.
func (m *Manager) Logout() {
	m.api.SetToken("")
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	m.clearPersisted()
	m.log.Info("signed out")
}

// DeleteAccount removes the caller's own account and, on success, signs
// out. Failure leaves the session intact so the action can be retried.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	if !m.Authenticated() {
		return ErrNotAuthenticated
	}
	if err := m.api.DeleteMe(ctx); err != nil {
		return err
	}
	m.Logout()
	return nil
}

func (m *Manager) Register(ctx context.Context, username, password string, role auth.Role) (api.User, error) {
	if username == "" || password == "" {
		return api.User{}, ErrMissingCredentials
	}
	if !role.Valid() {
		return api.User{}, ErrInvalidRole
	}
	return m.api.Register(ctx, api.RegisterRequest{Username: username, Password: password, Role: role})
}

// ChangeOwnPassword verifies the confirmation locally before calling out.
func (m *Manager) ChangeOwnPassword(ctx context.Context, newPassword, confirm string) error {
	user, ok := m.CurrentUser()
	if !ok {
		return ErrNotAuthenticated
	}
	if newPassword == "" || confirm == "" {
		return ErrMissingCredentials
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	return m.api.ChangePassword(ctx, user.ID, newPassword)
}

func (m *Manager) clearPersisted() {
	if err := m.store.ClearToken(); err != nil {
		m.log.Warn("clearing persisted token failed", zap.Error(err))
	}
}
