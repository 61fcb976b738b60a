package credentials

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	json "github.com/json-iterator/go"

	"github.com/zfogg/wayfarer/cli/pkg/config"
)

// Roles known to the backend, lowest privilege first
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
}

// accessClaims are the fields the backend puts in its access tokens
type accessClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// FromToken builds credentials from the claims of an access token. The
// signature is not verified; the server checks it on every request.
func FromToken(accessToken, refreshToken string) (*Credentials, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return nil, fmt.Errorf("malformed access token: %w", err)
	}

	creds := &Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       claims.Subject,
		Username:     claims.Username,
		Email:        claims.Email,
		Role:         claims.Role,
	}
	if claims.ExpiresAt != nil {
		creds.ExpiresAt = claims.ExpiresAt.Time
	}
	if creds.Role == "" {
		creds.Role = RoleUser
	}
	return creds, nil
}

// Load loads credentials from disk
func Load() (*Credentials, error) {
	path := config.GetCredentialsPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Credentials don't exist yet
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

// Save saves credentials to disk
func Save(creds *Credentials) error {
	path := config.GetCredentialsPath()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	// Write with restricted permissions (owner read/write only)
	return os.WriteFile(path, data, 0600)
}

// Delete deletes credentials from disk. A missing file is not an error.
func Delete() error {
	path := config.GetCredentialsPath()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsExpired checks if the access token is expired. A zero expiry means the
// token carried no exp claim and is treated as live.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials are valid
func (c *Credentials) IsValid() bool {
	return c.AccessToken != "" && !c.IsExpired()
}

// HasRole reports whether the user holds any of roles. Admins hold every role.
func (c *Credentials) HasRole(roles ...string) bool {
	if c.Role == RoleAdmin {
		return true
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// IsModerator reports whether the user may act on other users' content
func (c *Credentials) IsModerator() bool {
	return c.HasRole(RoleModerator)
}
