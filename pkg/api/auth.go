package api

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

// Login authenticates user with email and password
func Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	logger.Debug("Attempting login", "email", email)

	var loginResp LoginResponse
	req := newRequest(ctx).
		SetBody(LoginRequest{Email: email, Password: password}).
		SetResult(&loginResp)

	if _, err := send(req, resty.MethodPost, "/api/v1/auth/login"); err != nil {
		return nil, err
	}

	logger.Debug("Login successful", "username", loginResp.User.Username)
	return &loginResp, nil
}

// Register creates a new account and signs it in
func Register(ctx context.Context, reg RegisterRequest) (*LoginResponse, error) {
	logger.Debug("Registering account", "email", reg.Email, "username", reg.Username)

	var loginResp LoginResponse
	req := newRequest(ctx).
		SetBody(reg).
		SetResult(&loginResp)

	if _, err := send(req, resty.MethodPost, "/api/v1/auth/register"); err != nil {
		return nil, err
	}

	logger.Debug("Registration successful", "user_id", loginResp.User.ID)
	return &loginResp, nil
}

// Refresh refreshes the access token using refresh token
func Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	logger.Debug("Refreshing access token")

	var refreshResp RefreshResponse
	req := newRequest(ctx).
		SetBody(RefreshRequest{RefreshToken: refreshToken}).
		SetResult(&refreshResp)

	if _, err := send(req, resty.MethodPost, "/api/v1/auth/refresh"); err != nil {
		return nil, err
	}

	logger.Debug("Access token refreshed")
	return &refreshResp, nil
}

// Logout revokes the refresh token server side
func Logout(ctx context.Context, refreshToken string) error {
	logger.Debug("Revoking session")

	req := newRequest(ctx).SetBody(RefreshRequest{RefreshToken: refreshToken})
	_, err := send(req, resty.MethodPost, "/api/v1/auth/logout")
	return err
}

// GetCurrentUser gets the current authenticated user
func GetCurrentUser(ctx context.Context) (*User, error) {
	logger.Debug("Fetching current user")

	var profileResp ProfileResponse
	req := newRequest(ctx).SetResult(&profileResp)

	if _, err := send(req, resty.MethodGet, "/api/v1/auth/me"); err != nil {
		return nil, err
	}

	logger.Debug("Current user fetched", "username", profileResp.User.Username)
	return &profileResp.User, nil
}

// RequestPasswordReset asks the backend to email a reset link
func RequestPasswordReset(ctx context.Context, email string) error {
	logger.Debug("Requesting password reset", "email", email)

	req := newRequest(ctx).SetBody(PasswordResetRequest{Email: email})
	_, err := send(req, resty.MethodPost, "/api/v1/auth/password/forgot")
	return err
}

// ResetPassword sets a new password using the emailed token
func ResetPassword(ctx context.Context, token, newPassword string) error {
	logger.Debug("Confirming password reset")

	req := newRequest(ctx).SetBody(PasswordResetConfirmRequest{
		Token:       token,
		NewPassword: newPassword,
	})
	_, err := send(req, resty.MethodPost, "/api/v1/auth/password/reset")
	return err
}

// ChangePassword changes the password of the signed-in user
func ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	logger.Debug("Changing password")

	req := newRequest(ctx).SetBody(ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})
	_, err := send(req, resty.MethodPut, "/api/v1/auth/password")
	return err
}
