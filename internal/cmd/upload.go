package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zfogg/wayfarer/cli/pkg/guard"
	"github.com/zfogg/wayfarer/cli/pkg/service"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload images",
	Long: `Upload images and print their URLs. Files are checked locally
against the configured count, size, and type limits before anything
is sent.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewUploadService(uploadLimits()).UploadAndReport(cmd.Context(), args)
	},
}
