package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/config"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/formatter"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
	"github.com/zfogg/wayfarer/cli/pkg/notify"
	"github.com/zfogg/wayfarer/cli/pkg/output"
	"github.com/zfogg/wayfarer/cli/pkg/session"
)

// NotificationWatcherService watches for real-time notifications
type NotificationWatcherService struct {
	sessions *session.Manager
	channel  *notify.Channel
}

// NewNotificationWatcherService creates a new notification watcher service
func NewNotificationWatcherService(sessions *session.Manager, channel *notify.Channel) *NotificationWatcherService {
	return &NotificationWatcherService{sessions: sessions, channel: channel}
}

// Watch streams notifications until ctx ends or the user interrupts. The
// channel follows the session, so a logout elsewhere in the process stops
// it.
func (nw *NotificationWatcherService) Watch(ctx context.Context) error {
	logger.Debug("Starting notification watcher")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	webBase := config.GetString("web.base_url")
	unsubAdded := nw.channel.OnNotification(func(n api.Notification) {
		nw.displayEvent(n, notify.Route(n, webBase))
	})
	unsubUnread := nw.channel.OnUnreadChange(func(count int) {
		formatter.Faint.Fprintf(output.Out, "   📬 %d unread\n", count)
	})
	defer func() {
		unsubAdded()
		unsubUnread()
	}()

	unbind := nw.channel.BindSession(nw.sessions)
	defer func() {
		unbind()
		nw.channel.Stop()
	}()

	creds := nw.sessions.Current()
	if creds == nil {
		return clierrors.UnauthorizedError()
	}

	fmt.Fprintln(output.Out)
	formatter.PrintInfo("🔔 Watching for real-time notifications")
	fmt.Fprintf(output.Out, "Connected as: @%s\n", creds.Username)
	fmt.Fprintf(output.Out, "Press Ctrl+C to stop\n")
	fmt.Fprintf(output.Out, "%s\n", strings.Repeat("─", 60))

	nw.showRecent()

	<-ctx.Done()
	fmt.Fprintln(output.Out)
	formatter.PrintSuccess("Notification watcher stopped")
	return nil
}

func (nw *NotificationWatcherService) showRecent() {
	items := nw.channel.Store().Items()
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	if unread == 0 {
		return
	}
	fmt.Fprintf(output.Out, "%s waiting:\n", formatter.Plural(unread, "unread notification"))
	shown := 0
	for _, n := range items {
		if n.Read {
			continue
		}
		if shown == 5 {
			formatter.Faint.Fprintf(output.Out, "   ... see: wayfarer-cli notifications list --unread\n")
			break
		}
		fmt.Fprintf(output.Out, "   %s %s\n", iconFor(n.Type), formatter.Truncate(n.Message, 70))
		shown++
	}
	fmt.Fprintln(output.Out)
}

func (nw *NotificationWatcherService) displayEvent(n api.Notification, link notify.DeepLink) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(output.Out, "[%s] %s %s\n", timestamp, iconFor(n.Type), n.Message)
	if link.Command != "" {
		formatter.Faint.Fprintf(output.Out, "           %s\n", link.Command)
	} else {
		formatter.Faint.Fprintf(output.Out, "           %s\n", link.URL)
	}
}

func iconFor(notificationType string) string {
	switch notificationType {
	case api.NotificationBookingConfirmed, api.NotificationBookingReminder:
		return "🧳"
	case api.NotificationBookingCancelled:
		return "✖"
	case api.NotificationForumReply, api.NotificationForumComment:
		return "💬"
	case api.NotificationForumVote, api.NotificationPostVote:
		return "▲"
	case api.NotificationRegionUpdate:
		return "🗺"
	default:
		return "📬"
	}
}
