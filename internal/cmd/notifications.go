package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zfogg/wayfarer/cli/pkg/guard"
	"github.com/zfogg/wayfarer/cli/pkg/service"
)

var (
	notifPage       int
	notifPageSize   int
	notifUnreadOnly bool
	notifForce      bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Notification commands",
	Long:    "View and manage notifications",
}

func newNotificationService() *service.NotificationService {
	return service.NewNotificationService(notificationChannel())
}

var notificationsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List notifications",
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newNotificationService().List(cmd.Context(), notifPage, notifPageSize, notifUnreadOnly)
	},
}

var notificationsCountCmd = &cobra.Command{
	Use:     "count",
	Short:   "Show unread notification count",
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newNotificationService().Count(cmd.Context())
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:     "read [notification-id]",
	Short:   "Mark a notification as read",
	Long:    "Mark a notification as read. Without an id, pick one of the unread ones.",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		return newNotificationService().MarkRead(cmd.Context(), id)
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:     "read-all",
	Short:   "Mark every notification as read",
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newNotificationService().MarkAllRead(cmd.Context(), notifForce)
	},
}

var notificationsOpenCmd = &cobra.Command{
	Use:     "open <notification-id>",
	Short:   "Show where a notification leads and mark it read",
	Args:    cobra.ExactArgs(1),
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newNotificationService().Open(cmd.Context(), args[0])
	},
}

var notificationsWatchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Watch for real-time notifications",
	Long:    "Stream real-time notifications over WebSocket until interrupted",
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewNotificationWatcherService(sessions(), notificationChannel()).Watch(cmd.Context())
	},
}

func init() {
	notificationsListCmd.Flags().IntVar(&notifPage, "page", 1, "Page number")
	notificationsListCmd.Flags().IntVar(&notifPageSize, "page-size", 20, "Results per page")
	notificationsListCmd.Flags().BoolVarP(&notifUnreadOnly, "unread", "u", false, "Only unread notifications")
	notificationsReadAllCmd.Flags().BoolVarP(&notifForce, "force", "f", false, "Skip confirmation")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsCountCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
	notificationsCmd.AddCommand(notificationsOpenCmd)
	notificationsCmd.AddCommand(notificationsWatchCmd)
}
