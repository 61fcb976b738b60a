package service

import (
	"context"
	"time"

	"github.com/zfogg/wayfarer/cli/pkg/formatter"
	"github.com/zfogg/wayfarer/cli/pkg/output"
	"github.com/zfogg/wayfarer/cli/pkg/prompter"
	"github.com/zfogg/wayfarer/cli/pkg/session"
	"github.com/zfogg/wayfarer/cli/pkg/validation"
)

type AuthService struct {
	sessions *session.Manager
}

// NewAuthService creates a new auth service
func NewAuthService(sessions *session.Manager) *AuthService {
	return &AuthService{sessions: sessions}
}

// Login signs in, prompting for anything not passed as a flag
func (s *AuthService) Login(ctx context.Context, form validation.LoginForm) error {
	var err error
	if form.Email == "" {
		if form.Email, err = prompter.PromptString("Email: "); err != nil {
			return err
		}
	}
	if form.Password == "" {
		if form.Password, err = prompter.PromptPassword("Password: "); err != nil {
			return err
		}
	}

	formatter.PrintInfo("Authenticating...")
	creds, err := s.sessions.Login(ctx, form)
	if err != nil {
		return err
	}

	formatter.PrintSuccess("✓ Login successful!")
	if creds.IsModerator() {
		formatter.PrintInfo("Logged in as %s (%s)", formatter.Bold.Sprint(creds.Username), creds.Role)
	} else {
		formatter.PrintInfo("Logged in as %s", formatter.Bold.Sprint(creds.Username))
	}
	return nil
}

// Register creates an account, prompting for missing fields
func (s *AuthService) Register(ctx context.Context, form validation.RegisterForm) error {
	var err error
	if form.Email == "" {
		if form.Email, err = prompter.PromptString("Email: "); err != nil {
			return err
		}
	}
	if form.Username == "" {
		if form.Username, err = prompter.PromptString("Username: "); err != nil {
			return err
		}
	}
	if form.DisplayName == "" {
		if form.DisplayName, err = prompter.PromptString("Display name (optional): "); err != nil {
			return err
		}
	}
	if form.Password == "" {
		if form.Password, err = prompter.PromptPassword("Password: "); err != nil {
			return err
		}
		if form.ConfirmPassword, err = prompter.PromptPassword("Confirm password: "); err != nil {
			return err
		}
	} else if form.ConfirmPassword == "" {
		form.ConfirmPassword = form.Password
	}

	creds, err := s.sessions.Register(ctx, form)
	if err != nil {
		return err
	}

	formatter.PrintSuccess("✓ Account created")
	formatter.PrintInfo("Logged in as %s", formatter.Bold.Sprint(creds.Username))
	formatter.PrintInfo("Check %s for a verification link.", creds.Email)
	return nil
}

// Logout ends the session after confirmation
func (s *AuthService) Logout(ctx context.Context, skipConfirm bool) error {
	if err := s.sessions.Restore(ctx); err != nil {
		// a dead session can still be logged out of
		formatter.PrintWarning("%v", err)
	}
	creds, err := s.sessions.Saved()
	if err != nil {
		return err
	}
	if creds == nil {
		formatter.PrintWarning("Not logged in")
		return nil
	}

	if !skipConfirm {
		confirm, err := prompter.PromptConfirm("Logout?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	if err := s.sessions.Logout(ctx); err != nil {
		return err
	}
	formatter.PrintSuccess("✓ Logged out")
	return nil
}

// Me shows the signed-in user
func (s *AuthService) Me(ctx context.Context) error {
	user, err := s.sessions.User(ctx)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.Print("", user)
	}

	record := map[string]interface{}{
		"Username":       user.Username,
		"Email":          user.Email,
		"Role":           user.Role,
		"Posts":          user.PostCount,
		"Email Verified": user.EmailVerified,
		"Member Since":   user.CreatedAt.Format("Jan 2, 2006"),
	}
	if user.DisplayName != "" {
		record["Display Name"] = user.DisplayName
	}
	if user.HomeRegion != "" {
		record["Home Region"] = user.HomeRegion
	}
	return output.PrintRecord("", record)
}

// Refresh forces a token refresh and reports the new expiry
func (s *AuthService) Refresh(ctx context.Context) error {
	if err := s.sessions.Refresh(ctx); err != nil {
		return err
	}
	creds := s.sessions.Current()
	if creds != nil && !creds.ExpiresAt.IsZero() {
		formatter.PrintSuccess("✓ Session refreshed, valid until %s", creds.ExpiresAt.Local().Format(time.RFC1123))
		return nil
	}
	formatter.PrintSuccess("✓ Session refreshed")
	return nil
}

// ForgotPassword requests a reset email
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = prompter.PromptString("Email: "); err != nil {
			return err
		}
	}
	if err := s.sessions.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	// the backend answers the same whether or not the address is registered
	formatter.PrintSuccess("✓ If %s has an account, a reset link is on its way.", email)
	return nil
}

// ResetPassword completes a reset with the emailed token
func (s *AuthService) ResetPassword(ctx context.Context, form validation.ResetForm) error {
	var err error
	if form.Token == "" {
		if form.Token, err = prompter.PromptString("Reset token: "); err != nil {
			return err
		}
	}
	if form.Password == "" {
		if form.Password, err = prompter.PromptPassword("New password: "); err != nil {
			return err
		}
		if form.ConfirmPassword, err = prompter.PromptPassword("Confirm new password: "); err != nil {
			return err
		}
	}

	if err := s.sessions.ResetPassword(ctx, form); err != nil {
		return err
	}
	formatter.PrintSuccess("✓ Password reset. You can now log in.")
	return nil
}

// ChangePassword changes the signed-in user's password
func (s *AuthService) ChangePassword(ctx context.Context) error {
	var form validation.ChangePasswordForm
	var err error
	if form.CurrentPassword, err = prompter.PromptPassword("Current password: "); err != nil {
		return err
	}
	if form.Password, err = prompter.PromptPassword("New password: "); err != nil {
		return err
	}
	if form.ConfirmPassword, err = prompter.PromptPassword("Confirm new password: "); err != nil {
		return err
	}

	if err := s.sessions.ChangePassword(ctx, form); err != nil {
		return err
	}
	formatter.PrintSuccess("✓ Password changed")
	return nil
}
