// Package guard gates commands on the signed-in user before they run
package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zfogg/wayfarer/cli/pkg/credentials"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
	"github.com/zfogg/wayfarer/cli/pkg/session"
)

// Guard allows or rejects the current invocation
type Guard func(ctx context.Context) error

// RequireAuth restores the saved session and rejects the command when no
// user is signed in.
func RequireAuth(m *session.Manager) Guard {
	return func(ctx context.Context) error {
		if err := m.Restore(ctx); err != nil {
			return err
		}
		if !m.IsAuthenticated() {
			return clierrors.AuthError("You must be logged in to do that")
		}
		return nil
	}
}

// RequireRole is RequireAuth plus membership in one of roles. Admins pass
// every role check.
func RequireRole(m *session.Manager, roles ...string) Guard {
	auth := RequireAuth(m)
	return func(ctx context.Context) error {
		if err := auth(ctx); err != nil {
			return err
		}
		creds := m.Current()
		if creds == nil || !creds.HasRole(roles...) {
			logger.Debug("Role check failed", "required", roles, "role", roleOf(creds))
			return clierrors.ForbiddenError(fmt.Sprintf("This command requires the %s role", strings.Join(roles, " or ")))
		}
		return nil
	}
}

// RequireGuest rejects the command when a user is already signed in
func RequireGuest(m *session.Manager) Guard {
	return func(ctx context.Context) error {
		if err := m.Restore(ctx); err != nil {
			logger.Debug("Ignoring restore failure for guest command", "error", err)
			return nil
		}
		if creds := m.Current(); creds != nil && m.IsAuthenticated() {
			err := clierrors.NewCLIError(clierrors.ErrorTypeConflict,
				fmt.Sprintf("Already logged in as %s", displayName(creds)), nil)
			err.Suggestion = "Run 'wayfarer-cli auth logout' first."
			return err
		}
		return nil
	}
}

// Chain runs guards in order and stops at the first rejection. The result
// is meant for a cobra command's PreRunE.
func Chain(guards ...Guard) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		for _, g := range guards {
			if err := g(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func roleOf(creds *credentials.Credentials) string {
	if creds == nil {
		return ""
	}
	return creds.Role
}

func displayName(creds *credentials.Credentials) string {
	if creds.Username != "" {
		return creds.Username
	}
	if creds.Email != "" {
		return creds.Email
	}
	return creds.UserID
}
