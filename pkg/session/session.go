// Package session holds the signed-in user for the lifetime of the process.
// It owns the persisted credentials, keeps the API client's bearer token in
// step with them and tells subscribers when the user logs in or out.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/client"
	"github.com/zfogg/wayfarer/cli/pkg/credentials"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
	"github.com/zfogg/wayfarer/cli/pkg/validation"
)

// State is delivered to OnChange listeners. Refreshed marks a new access
// token for a user who was already signed in.
type State struct {
	Authenticated bool
	Refreshed     bool
	Credentials   *credentials.Credentials
}

// Manager tracks the current session
type Manager struct {
	mu        sync.RWMutex
	creds     *credentials.Credentials
	loaded    bool
	listeners map[int]func(State)
	nextID    int

	maxRetries int
	retryDelay time.Duration
}

// Option configures a Manager
type Option func(*Manager)

// WithRefreshRetries sets how often an expired token refresh is attempted
func WithRefreshRetries(attempts int, delay time.Duration) Option {
	return func(m *Manager) {
		if attempts > 0 {
			m.maxRetries = attempts
		}
		m.retryDelay = delay
	}
}

// NewManager creates a session manager with no user loaded
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		listeners:  make(map[int]func(State)),
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the process-wide manager
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}

// Restore loads saved credentials and installs the access token. An expired
// token is refreshed; a rejected refresh token ends the session.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.loaded {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	creds, err := credentials.Load()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	m.mu.Lock()
	m.loaded = true
	m.mu.Unlock()

	if creds == nil || creds.AccessToken == "" {
		logger.Debug("No saved session")
		return nil
	}

	if !creds.IsExpired() {
		m.install(creds, false)
		return nil
	}

	logger.Debug("Access token expired, refreshing", "user_id", creds.UserID)
	return m.refresh(ctx, creds)
}

// Refresh exchanges the refresh token for a new access token now
func (m *Manager) Refresh(ctx context.Context) error {
	if err := m.Restore(ctx); err != nil {
		return err
	}

	creds := m.Current()
	if creds == nil {
		return clierrors.AuthError("Not logged in")
	}
	return m.refresh(ctx, creds)
}

func (m *Manager) refresh(ctx context.Context, creds *credentials.Credentials) error {
	if creds.RefreshToken == "" {
		m.clear()
		return clierrors.SessionExpiredError()
	}

	var lastErr error
	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		logger.Debug("Refreshing token", "attempt", attempt)

		resp, err := api.Refresh(ctx, creds.RefreshToken)
		if err == nil {
			refreshToken := resp.RefreshToken
			if refreshToken == "" {
				refreshToken = creds.RefreshToken
			}
			next := fromTokens(resp.AccessToken, refreshToken, resp.ExpiresIn, creds)
			if err := credentials.Save(next); err != nil {
				logger.Error("Failed to save refreshed credentials", "error", err)
			}
			m.install(next, false)
			return nil
		}

		if api.IsUnauthorized(err) || api.IsForbidden(err) {
			logger.Info("Refresh token rejected, signing out")
			m.clear()
			return clierrors.SessionExpiredError().WithCause(err)
		}

		lastErr = err
		if attempt < m.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.retryDelay):
			}
		}
	}

	return fmt.Errorf("failed to refresh session after %d attempts: %w", m.maxRetries, lastErr)
}

// Login signs in with email and password
func (m *Manager) Login(ctx context.Context, form validation.LoginForm) (*credentials.Credentials, error) {
	if err := validation.Validate(form); err != nil {
		return nil, err
	}

	resp, err := api.Login(ctx, form.Email, form.Password)
	if err != nil {
		if api.IsUnauthorized(err) {
			return nil, clierrors.AuthError("Invalid email or password").WithCause(err)
		}
		return nil, err
	}

	return m.start(resp)
}

// Register creates an account and signs it in
func (m *Manager) Register(ctx context.Context, form validation.RegisterForm) (*credentials.Credentials, error) {
	if err := validation.Validate(form); err != nil {
		return nil, err
	}

	resp, err := api.Register(ctx, api.RegisterRequest{
		Email:       form.Email,
		Username:    form.Username,
		Password:    form.Password,
		DisplayName: form.DisplayName,
		HomeRegion:  form.HomeRegion,
	})
	if err != nil {
		return nil, err
	}

	return m.start(resp)
}

func (m *Manager) start(resp *api.LoginResponse) (*credentials.Credentials, error) {
	creds := fromTokens(resp.AccessToken, resp.RefreshToken, resp.ExpiresIn, nil)
	if resp.User.ID != "" {
		creds.UserID = resp.User.ID
		creds.Username = resp.User.Username
		creds.Email = resp.User.Email
	}
	if resp.User.Role != "" {
		creds.Role = resp.User.Role
	}

	if err := credentials.Save(creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	m.mu.Lock()
	m.loaded = true
	m.mu.Unlock()

	m.install(creds, true)
	logger.Info("Signed in", "username", creds.Username)

	out := *creds
	return &out, nil
}

// Logout revokes the session server side when possible and forgets it
// locally. Logging out while logged out is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	creds, err := m.Saved()
	if err != nil {
		return err
	}
	if creds == nil {
		m.mu.Lock()
		m.loaded = true
		m.mu.Unlock()
		return nil
	}

	if creds.RefreshToken != "" {
		client.SetAuthToken(creds.AccessToken)
		if err := api.Logout(ctx, creds.RefreshToken); err != nil {
			logger.Warn("Server logout failed, clearing local session anyway", "error", err)
		}
	}

	m.clear()
	logger.Info("Signed out", "username", creds.Username)
	return nil
}

// RequestPasswordReset asks the backend to email a reset link
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	if err := validation.Validate(validation.EmailForm{Email: email}); err != nil {
		return err
	}
	return api.RequestPasswordReset(ctx, email)
}

// ResetPassword completes a reset with the emailed token
func (m *Manager) ResetPassword(ctx context.Context, form validation.ResetForm) error {
	if err := validation.Validate(form); err != nil {
		return err
	}
	return api.ResetPassword(ctx, form.Token, form.Password)
}

// ChangePassword changes the signed-in user's password
func (m *Manager) ChangePassword(ctx context.Context, form validation.ChangePasswordForm) error {
	if err := validation.Validate(form); err != nil {
		return err
	}
	if !m.IsAuthenticated() {
		return clierrors.UnauthorizedError()
	}
	return api.ChangePassword(ctx, form.CurrentPassword, form.Password)
}

// User fetches the signed-in user's profile and refreshes the cached
// identity fields.
func (m *Manager) User(ctx context.Context) (*api.User, error) {
	if !m.IsAuthenticated() {
		return nil, clierrors.UnauthorizedError()
	}

	user, err := api.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.creds != nil && (m.creds.Username != user.Username || m.creds.Email != user.Email || (user.Role != "" && m.creds.Role != user.Role)) {
		m.creds.Username = user.Username
		m.creds.Email = user.Email
		if user.Role != "" {
			m.creds.Role = user.Role
		}
		if err := credentials.Save(m.creds); err != nil {
			logger.Warn("Failed to save credentials", "error", err)
		}
	}
	m.mu.Unlock()

	return user, nil
}

// Current returns a copy of the active credentials, or nil
func (m *Manager) Current() *credentials.Credentials {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.creds == nil {
		return nil
	}
	out := *m.creds
	return &out
}

// Saved returns the active credentials, falling back to the ones on disk.
// A session whose refresh failed is not installed but is still saved.
func (m *Manager) Saved() (*credentials.Credentials, error) {
	if creds := m.Current(); creds != nil {
		return creds, nil
	}
	saved, err := credentials.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return saved, nil
}

// IsAuthenticated reports whether a usable session is installed
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds != nil && m.creds.IsValid()
}

// OnChange registers fn for login and logout transitions. The returned func
// removes it.
func (m *Manager) OnChange(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) install(creds *credentials.Credentials, notify bool) {
	m.mu.Lock()
	prev := m.creds
	m.creds = creds
	m.mu.Unlock()

	client.SetAuthToken(creds.AccessToken)

	switch {
	case notify || prev == nil:
		m.emit(State{Authenticated: true, Credentials: creds})
	case prev.AccessToken != creds.AccessToken:
		m.emit(State{Authenticated: true, Refreshed: true, Credentials: creds})
	}
}

func (m *Manager) clear() {
	m.mu.Lock()
	wasAuthenticated := m.creds != nil
	m.creds = nil
	m.loaded = true
	m.mu.Unlock()

	if err := credentials.Delete(); err != nil {
		logger.Warn("Failed to delete credentials", "error", err)
	}
	client.ClearAuthToken()

	if wasAuthenticated {
		m.emit(State{Authenticated: false})
	}
}

func (m *Manager) emit(state State) {
	m.mu.RLock()
	fns := make([]func(State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	if state.Credentials != nil {
		c := *state.Credentials
		state.Credentials = &c
	}
	for _, fn := range fns {
		fn(state)
	}
}

// fromTokens builds credentials from a token pair. Identity comes from the
// access token claims when it is a JWT, otherwise from prev.
func fromTokens(accessToken, refreshToken string, expiresIn int, prev *credentials.Credentials) *credentials.Credentials {
	creds, err := credentials.FromToken(accessToken, refreshToken)
	if err != nil {
		logger.Debug("Access token is opaque", "error", err)
		creds = &credentials.Credentials{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			Role:         credentials.RoleUser,
		}
	}

	if prev != nil {
		if creds.UserID == "" {
			creds.UserID = prev.UserID
		}
		if creds.Username == "" {
			creds.Username = prev.Username
		}
		if creds.Email == "" {
			creds.Email = prev.Email
		}
		if err != nil && prev.Role != "" {
			creds.Role = prev.Role
		}
	}

	if expiresIn > 0 {
		creds.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return creds
}
