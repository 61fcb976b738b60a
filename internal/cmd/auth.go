package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zfogg/wayfarer/cli/pkg/guard"
	"github.com/zfogg/wayfarer/cli/pkg/service"
	"github.com/zfogg/wayfarer/cli/pkg/validation"
)

var (
	loginEmail     string
	loginPassword  string
	registerForm   validation.RegisterForm
	resetToken     string
	logoutYes      bool
	forgotEmailArg string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Manage your Wayfarer account and session",
}

var registerCmd = &cobra.Command{
	Use:     "register",
	Short:   "Create a new Wayfarer account",
	Long:    "Register a new account. Fields not given as flags are prompted for.",
	PreRunE: guard.Chain(guard.RequireGuest(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService(sessions()).Register(cmd.Context(), registerForm)
	},
}

var loginCmd = &cobra.Command{
	Use:     "login",
	Short:   "Login to Wayfarer",
	Long:    "Authenticate with email and password",
	PreRunE: guard.Chain(guard.RequireGuest(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService(sessions()).Login(cmd.Context(), validation.LoginForm{
			Email:    loginEmail,
			Password: loginPassword,
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from Wayfarer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService(sessions()).Logout(cmd.Context(), logoutYes)
	},
}

var meCmd = &cobra.Command{
	Use:     "me",
	Short:   "Display current authenticated user",
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService(sessions()).Me(cmd.Context())
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh authentication token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService(sessions()).Refresh(cmd.Context())
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password [email]",
	Short: "Request a password reset email",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := forgotEmailArg
		if len(args) == 1 {
			email = args[0]
		}
		return service.NewAuthService(sessions()).ForgotPassword(cmd.Context(), email)
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with the emailed reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService(sessions()).ResetPassword(cmd.Context(), validation.ResetForm{Token: resetToken})
	},
}

var changePasswordCmd = &cobra.Command{
	Use:     "change-password",
	Short:   "Change your password",
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService(sessions()).ChangePassword(cmd.Context())
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerForm.Email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerForm.Username, "username", "", "Public username")
	registerCmd.Flags().StringVar(&registerForm.DisplayName, "display-name", "", "Display name")
	registerCmd.Flags().StringVar(&registerForm.HomeRegion, "home-region", "", "Home region slug")

	logoutCmd.Flags().BoolVarP(&logoutYes, "yes", "y", false, "Skip confirmation")
	forgotPasswordCmd.Flags().StringVar(&forgotEmailArg, "email", "", "Account email")
	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "Reset token from the email")

	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
	authCmd.AddCommand(refreshCmd)
	authCmd.AddCommand(forgotPasswordCmd)
	authCmd.AddCommand(resetPasswordCmd)
	authCmd.AddCommand(changePasswordCmd)
}
