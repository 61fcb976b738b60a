package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/zfogg/wayfarer/cli/pkg/config"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
	"github.com/zfogg/wayfarer/cli/pkg/notify"
	"github.com/zfogg/wayfarer/cli/pkg/output"
	"github.com/zfogg/wayfarer/cli/pkg/session"
	"github.com/zfogg/wayfarer/cli/pkg/upload"
	"github.com/zfogg/wayfarer/cli/pkg/websocket"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	apiURL     string
)

var (
	channelOnce sync.Once
	channel     *notify.Channel
)

// sessions is shared by every command so the notification channel sees the
// same login state the commands act on
func sessions() *session.Manager {
	return session.Default()
}

// notificationChannel is built on first use, after config has loaded
func notificationChannel() *notify.Channel {
	channelOnce.Do(func() {
		channel = notify.NewChannel(notify.NewStore(), websocket.DefaultConfig())
	})
	return channel
}

func uploadLimits() upload.Limits {
	return upload.LimitsFromConfig()
}

var rootCmd = &cobra.Command{
	Use:   "wayfarer-cli",
	Short: "Wayfarer CLI - Travel community forum",
	Long: `Wayfarer CLI is a command-line interface for the Wayfarer travel
community. Browse regions, discuss trips in the forum, and follow
your notifications directly from the terminal.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.ValidationError("output", "must be one of text, json, table")
			}
			config.Set("output.format", outputFmt)
		}
		if apiURL != "" {
			config.Set("api.base_url", apiURL)
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, clierrors.FormatError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/wayfarer/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Override the API base URL")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(regionCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// restoreSession loads a saved login when there is one so reads carry the
// user's own votes. Being signed out is fine here.
func restoreSession(cmd *cobra.Command, args []string) error {
	if err := sessions().Restore(cmd.Context()); err != nil {
		logger.Debug("Continuing without a session", "error", err)
	}
	return nil
}
