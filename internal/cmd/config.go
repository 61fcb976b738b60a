package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zfogg/wayfarer/cli/pkg/config"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/formatter"
	"github.com/zfogg/wayfarer/cli/pkg/output"
)

// settable lists the keys "config set" accepts
var settable = []string{
	"api.base_url",
	"api.timeout",
	"web.base_url",
	"ws.url",
	"output.format",
	"log.level",
	"log.file",
	"upload.max_files",
	"upload.max_file_mb",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		record := map[string]interface{}{
			"Config File": config.GetConfigFilePath(),
			"Config Dir":  config.GetConfigDir(),
			"WebSocket":   config.WebSocketURL(),
		}
		for _, key := range settable {
			record[key] = config.GetString(key)
		}
		return output.PrintRecord("Configuration", record)
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Persist a setting to the user config file",
	Args:      cobra.ExactArgs(2),
	ValidArgs: settable,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !isSettable(key) {
			return clierrors.ValidationError(key, "unknown setting").
				WithSuggestion("Run 'wayfarer-cli config show' to list settings")
		}
		if key == "output.format" && !output.ValidateOutputFormat(value) {
			return clierrors.ValidationError(key, "must be one of text, json, table")
		}
		if err := config.SetString(key, value); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		formatter.PrintSuccess("✓ %s = %s", key, value)
		return nil
	},
}

func isSettable(key string) bool {
	for _, k := range settable {
		if k == key {
			return true
		}
	}
	return false
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
