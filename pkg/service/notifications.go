package service

import (
	"context"
	"fmt"
	"time"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/config"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/formatter"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
	"github.com/zfogg/wayfarer/cli/pkg/notify"
	"github.com/zfogg/wayfarer/cli/pkg/output"
	"github.com/zfogg/wayfarer/cli/pkg/prompter"
)

// NotificationService provides notification-related operations
type NotificationService struct {
	channel *notify.Channel
	now     func() time.Time
}

// NewNotificationService creates a new notification service. Mark-read
// requests go through channel so its store stays consistent.
func NewNotificationService(channel *notify.Channel) *NotificationService {
	return &NotificationService{channel: channel, now: time.Now}
}

// List displays the user's notifications
func (ns *NotificationService) List(ctx context.Context, page, pageSize int, unreadOnly bool) error {
	logger.Debug("Listing notifications", "page", page, "unread_only", unreadOnly)

	resp, err := api.GetNotifications(ctx, page, pageSize, unreadOnly)
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}
	if output.IsJSON() {
		return output.Print("", resp)
	}

	if len(resp.Notifications) == 0 {
		fmt.Fprintln(output.Out, "No notifications.")
		return nil
	}

	rows := make([][]string, 0, len(resp.Notifications))
	for _, n := range resp.Notifications {
		marker := " "
		if !n.Read {
			marker = "●"
		}
		rows = append(rows, []string{marker, n.ID, n.Type, formatter.Truncate(n.Message, 60), formatter.TimeAgo(n.CreatedAt, ns.now())})
	}
	output.PrintTable([]string{"", "ID", "TYPE", "MESSAGE", "WHEN"}, rows)
	fmt.Fprintf(output.Out, "\n📬 %d unread\n", resp.UnreadCount)
	return nil
}

// Count displays the unread count derived from the user's notifications.
// The server's own counter is only compared against it.
func (ns *NotificationService) Count(ctx context.Context) error {
	resp, err := api.GetNotifications(ctx, 1, notify.HydratePageSize, false)
	if err != nil {
		return fmt.Errorf("failed to get unread count: %w", err)
	}
	store := ns.channel.Store()
	store.Hydrate(resp.Notifications)
	count := store.UnreadCount()

	if server, err := api.GetUnreadCount(ctx); err != nil {
		logger.Debug("Server unread count unavailable", "error", err)
	} else if server != count {
		logger.Debug("Server unread count differs", "server", server, "local", count)
	}

	if output.IsJSON() {
		return output.Print("", map[string]int{"unread_count": count})
	}

	if count == 0 {
		fmt.Fprintln(output.Out, "No unread notifications.")
		return nil
	}
	fmt.Fprintf(output.Out, "📬 %s\n", formatter.Plural(count, "unread notification"))
	return nil
}

// MarkRead marks one notification as read. Without an id the user picks
// from the unread ones.
func (ns *NotificationService) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		picked, err := ns.pickUnread(ctx)
		if err != nil || picked == "" {
			return err
		}
		id = picked
	}

	if err := ns.channel.MarkRead(ctx, id); err != nil {
		if api.IsNotFound(err) {
			return clierrors.NotFoundError("Notification", id)
		}
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	formatter.PrintSuccess("✓ Notification marked as read.")
	return nil
}

func (ns *NotificationService) pickUnread(ctx context.Context) (string, error) {
	resp, err := api.GetNotifications(ctx, 1, notify.HydratePageSize, true)
	if err != nil {
		return "", fmt.Errorf("failed to list notifications: %w", err)
	}
	if len(resp.Notifications) == 0 {
		fmt.Fprintln(output.Out, "No unread notifications.")
		return "", nil
	}

	options := make([]string, len(resp.Notifications))
	for i, n := range resp.Notifications {
		options[i] = fmt.Sprintf("%s (%s)", formatter.Truncate(n.Message, 60), formatter.TimeAgo(n.CreatedAt, ns.now()))
	}
	idx, err := prompter.PromptSelect("Unread notifications:", options)
	if err != nil {
		return "", err
	}
	return resp.Notifications[idx].ID, nil
}

// MarkAllRead marks all notifications as read after confirmation
func (ns *NotificationService) MarkAllRead(ctx context.Context, force bool) error {
	if !force {
		confirm, err := prompter.PromptConfirm("Mark all notifications as read?")
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Fprintln(output.Out, "Cancelled.")
			return nil
		}
	}

	if err := ns.channel.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("failed to mark all as read: %w", err)
	}
	formatter.PrintSuccess("✓ All notifications marked as read.")
	return nil
}

// Open resolves where a notification leads and marks it read
func (ns *NotificationService) Open(ctx context.Context, id string) error {
	store := ns.channel.Store()
	if _, ok := store.Get(id); !ok {
		resp, err := api.GetNotifications(ctx, 1, notify.HydratePageSize, false)
		if err != nil {
			return fmt.Errorf("failed to load notifications: %w", err)
		}
		store.Hydrate(resp.Notifications)
	}

	n, ok := store.Get(id)
	if !ok {
		return clierrors.NotFoundError("Notification", id)
	}

	link := notify.Route(n, config.GetString("web.base_url"))
	if !n.Read {
		if err := ns.channel.MarkRead(ctx, id); err != nil {
			logger.Warn("Failed to mark notification as read", "notification_id", id, "error", err)
		}
	}

	if output.IsJSON() {
		return output.Print("", link)
	}
	fmt.Fprintln(output.Out, n.Message)
	fmt.Fprintf(output.Out, "  %s\n", formatter.Info.Sprint(link.URL))
	if link.Command != "" {
		formatter.Faint.Fprintf(output.Out, "  %s\n", link.Command)
	}
	return nil
}
