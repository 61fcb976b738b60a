package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zfogg/wayfarer/cli/pkg/service"
)

var regionSearch string

var regionCmd = &cobra.Command{
	Use:     "region",
	Aliases: []string{"regions"},
	Short:   "Browse forum regions",
}

var regionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewRegionService().List(cmd.Context(), regionSearch)
	},
}

var regionViewCmd = &cobra.Command{
	Use:   "view <slug>",
	Short: "Show a region and its newest posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewRegionService().View(cmd.Context(), args[0])
	},
}

func init() {
	regionListCmd.Flags().StringVarP(&regionSearch, "search", "s", "", "Filter by name or country")

	regionCmd.AddCommand(regionListCmd)
	regionCmd.AddCommand(regionViewCmd)
}
