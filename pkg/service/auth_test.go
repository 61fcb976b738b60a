package service

import (
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/credentials"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/session"
	"github.com/zfogg/wayfarer/cli/pkg/validation"
)

func TestLoginPromptsForMissingFields(t *testing.T) {
	f := setup(t, "")
	var got api.LoginRequest
	f.mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		decode(t, r, &got)
		reply(w, http.StatusOK, api.LoginResponse{
			AccessToken:  "opaque",
			RefreshToken: "refresh",
			ExpiresIn:    3600,
			User:         api.User{ID: "u1", Username: "ana", Email: got.Email, Role: credentials.RoleModerator},
		})
	})

	answer("ana@example.com", "correct-horse")
	require.NoError(t, NewAuthService(f.sessions).Login(t.Context(), validation.LoginForm{}))

	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "correct-horse", got.Password)
	assert.Contains(t, f.out.String(), "Logged in as ana (moderator)")
	assert.True(t, f.sessions.IsAuthenticated())
}

func TestLoginRejected(t *testing.T) {
	f := setup(t, "")
	f.mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusUnauthorized, api.ErrorResponse{Code: "invalid_credentials", Message: "nope"})
	})

	err := NewAuthService(f.sessions).Login(t.Context(), validation.LoginForm{Email: "ana@example.com", Password: "wrong-horse"})
	var cliErr *clierrors.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierrors.ErrorTypeAuth, cliErr.Type)
	assert.False(t, f.sessions.IsAuthenticated())
}

func TestLogoutConfirms(t *testing.T) {
	f := setup(t, credentials.RoleUser)
	var calls int32
	f.mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNoContent)
	})
	as := NewAuthService(f.sessions)

	answer("n")
	require.NoError(t, as.Logout(t.Context(), false))
	assert.True(t, f.sessions.IsAuthenticated())

	require.NoError(t, as.Logout(t.Context(), true))
	assert.False(t, f.sessions.IsAuthenticated())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	creds, err := credentials.Load()
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestLogoutWhenSignedOut(t *testing.T) {
	f := setup(t, "")
	require.NoError(t, NewAuthService(f.sessions).Logout(t.Context(), true))
	assert.Contains(t, f.out.String(), "Not logged in")
}

func TestLogoutWithUnrefreshableSession(t *testing.T) {
	f := setup(t, "")
	f.mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusServiceUnavailable, api.ErrorResponse{Code: "unavailable", Message: "try later"})
	})
	f.mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken:  "old",
		RefreshToken: "r",
		UserID:       "u1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}))
	f.sessions = session.NewManager(session.WithRefreshRetries(1, time.Millisecond))

	require.NoError(t, NewAuthService(f.sessions).Logout(t.Context(), true))
	assert.Contains(t, f.out.String(), "Logged out")

	creds, err := credentials.Load()
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestMe(t *testing.T) {
	f := setup(t, credentials.RoleUser)
	f.mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		reply(w, http.StatusOK, api.ProfileResponse{User: api.User{ID: "u1", Username: "nomad", Email: "n@example.com", Role: "user", HomeRegion: "lisbon"}})
	})

	require.NoError(t, NewAuthService(f.sessions).Me(t.Context()))
	assert.Contains(t, f.out.String(), "nomad")
	assert.Contains(t, f.out.String(), "lisbon")
}

func TestForgotPasswordValidatesEmail(t *testing.T) {
	f := setup(t, "")
	var calls int32
	f.mux.HandleFunc("POST /api/v1/auth/password/forgot", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusAccepted)
	})
	as := NewAuthService(f.sessions)

	require.Error(t, as.ForgotPassword(t.Context(), "not-an-email"))
	assert.Zero(t, atomic.LoadInt32(&calls))

	require.NoError(t, as.ForgotPassword(t.Context(), "ana@example.com"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Contains(t, f.out.String(), "reset link")
}

func TestChangePasswordMismatch(t *testing.T) {
	f := setup(t, credentials.RoleUser)
	var calls int32
	f.mux.HandleFunc("PUT /api/v1/auth/password", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	answer("old-password", "new-password-1", "new-password-2")
	err := NewAuthService(f.sessions).ChangePassword(t.Context())
	var formErr *validation.FormError
	require.True(t, errors.As(err, &formErr))
	_, ok := formErr.Field("confirm_password")
	assert.True(t, ok)
	assert.Zero(t, atomic.LoadInt32(&calls))
}
