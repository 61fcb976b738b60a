package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/zfogg/wayfarer/cli/pkg/api"
)

const fallbackPath = "/notifications"

// DeepLink is where a notification leads, on the web and in the CLI
type DeepLink struct {
	Path    string `json:"path"`
	URL     string `json:"url"`
	Command string `json:"command,omitempty"`
}

// Route resolves the deep link for n against the web app base URL.
// Notifications missing the reference their type needs fall back to the
// notification list.
func Route(n api.Notification, webBase string) DeepLink {
	path, command := route(n)
	if path == "" {
		path = fallbackPath
		command = "wayfarer-cli notifications list"
	}

	return DeepLink{
		Path:    path,
		URL:     strings.TrimSuffix(webBase, "/") + path,
		Command: command,
	}
}

func route(n api.Notification) (string, string) {
	switch n.Type {
	case api.NotificationBookingConfirmed, api.NotificationBookingCancelled, api.NotificationBookingReminder:
		if n.BookingID == "" {
			return "", ""
		}
		// Bookings are managed on the web only
		return "/bookings/" + url.PathEscape(n.BookingID), ""

	case api.NotificationForumReply, api.NotificationForumComment:
		if n.PostID == "" {
			return "", ""
		}
		path := "/forum/posts/" + url.PathEscape(n.PostID)
		if n.CommentID != "" {
			path += "#comment-" + url.PathEscape(n.CommentID)
		}
		return path, fmt.Sprintf("wayfarer-cli post view %s", n.PostID)

	case api.NotificationForumVote, api.NotificationPostVote:
		if n.PostID == "" {
			return "", ""
		}
		return "/forum/posts/" + url.PathEscape(n.PostID), fmt.Sprintf("wayfarer-cli post view %s", n.PostID)

	case api.NotificationRegionUpdate:
		if n.RegionSlug == "" {
			return "", ""
		}
		return "/regions/" + url.PathEscape(n.RegionSlug), fmt.Sprintf("wayfarer-cli region view %s", n.RegionSlug)
	}

	return "", ""
}
