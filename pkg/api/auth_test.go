package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/wayfarer/cli/pkg/client"
)

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body LoginRequest
		decodeBody(t, r, &body)
		if body.Password != "correct-horse" {
			writeJSON(t, w, http.StatusUnauthorized, ErrorResponse{Code: "invalid_credentials", Message: "wrong email or password"})
			return
		}
		writeJSON(t, w, http.StatusOK, LoginResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    900,
			User:         User{ID: "u1", Email: body.Email, Username: "ana", Role: RoleUser},
		})
	})
	newTestServer(t, mux)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := Login(context.Background(), "ana@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "access", resp.AccessToken)
		assert.Equal(t, "refresh", resp.RefreshToken)
		assert.Equal(t, "ana", resp.User.Username)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		resp, err := Login(context.Background(), "ana@example.com", "nope")
		assert.Nil(t, resp)
		require.Error(t, err)
		assert.True(t, IsUnauthorized(err))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "invalid_credentials", apiErr.Code)
	})
}

func TestRegister(t *testing.T) {
	newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		var body RegisterRequest
		decodeBody(t, r, &body)
		assert.Equal(t, "wanderer", body.Username)
		writeJSON(t, w, http.StatusCreated, LoginResponse{
			AccessToken: "a",
			User:        User{ID: "u2", Username: body.Username, Email: body.Email},
		})
	}))

	resp, err := Register(context.Background(), RegisterRequest{
		Email:    "w@example.com",
		Username: "wanderer",
		Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "u2", resp.User.ID)
}

func TestRefreshAndLogout(t *testing.T) {
	var loggedOut string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body RefreshRequest
		decodeBody(t, r, &body)
		if body.RefreshToken != "good" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "refresh token revoked"})
			return
		}
		writeJSON(t, w, http.StatusOK, RefreshResponse{AccessToken: "new-access", ExpiresIn: 900})
	})
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		var body RefreshRequest
		decodeBody(t, r, &body)
		loggedOut = body.RefreshToken
		w.WriteHeader(http.StatusNoContent)
	})
	newTestServer(t, mux)

	resp, err := Refresh(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "new-access", resp.AccessToken)

	_, err = Refresh(context.Background(), "bad")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "unauthorized", apiErr.Code)
	assert.Equal(t, "refresh token revoked", apiErr.Message)

	require.NoError(t, Logout(context.Background(), "good"))
	assert.Equal(t, "good", loggedOut)
}

func TestGetCurrentUserSendsBearer(t *testing.T) {
	newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, http.StatusOK, ProfileResponse{User: User{ID: "u1", Username: "ana", Role: RoleModerator}})
	}))

	_, err := GetCurrentUser(context.Background())
	assert.True(t, IsUnauthorized(err))

	client.SetAuthToken("tok")
	user, err := GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RoleModerator, user.Role)
}

func TestPasswordFlows(t *testing.T) {
	seen := map[string]string{}
	newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[r.URL.Path] = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx := context.Background()
	require.NoError(t, RequestPasswordReset(ctx, "ana@example.com"))
	require.NoError(t, ResetPassword(ctx, "reset-token", "new-password"))
	require.NoError(t, ChangePassword(ctx, "old-password", "new-password"))

	assert.Equal(t, http.MethodPost, seen["/api/v1/auth/password/forgot"])
	assert.Equal(t, http.MethodPost, seen["/api/v1/auth/password/reset"])
	assert.Equal(t, http.MethodPut, seen["/api/v1/auth/password"])
}
