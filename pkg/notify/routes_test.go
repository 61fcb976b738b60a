package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zfogg/wayfarer/cli/pkg/api"
)

func TestRoute(t *testing.T) {
	const web = "https://wayfarer.example/"

	tests := []struct {
		name    string
		n       api.Notification
		path    string
		command string
	}{
		{
			name: "booking confirmed",
			n:    api.Notification{Type: api.NotificationBookingConfirmed, BookingID: "bk-1"},
			path: "/bookings/bk-1",
		},
		{
			name: "booking reminder",
			n:    api.Notification{Type: api.NotificationBookingReminder, BookingID: "bk-2"},
			path: "/bookings/bk-2",
		},
		{
			name:    "forum reply with comment",
			n:       api.Notification{Type: api.NotificationForumReply, PostID: "p1", CommentID: "c9"},
			path:    "/forum/posts/p1#comment-c9",
			command: "wayfarer-cli post view p1",
		},
		{
			name:    "forum comment without comment id",
			n:       api.Notification{Type: api.NotificationForumComment, PostID: "p1"},
			path:    "/forum/posts/p1",
			command: "wayfarer-cli post view p1",
		},
		{
			name:    "post vote",
			n:       api.Notification{Type: api.NotificationPostVote, PostID: "p2"},
			path:    "/forum/posts/p2",
			command: "wayfarer-cli post view p2",
		},
		{
			name:    "forum vote",
			n:       api.Notification{Type: api.NotificationForumVote, PostID: "p3", CommentID: "c1"},
			path:    "/forum/posts/p3",
			command: "wayfarer-cli post view p3",
		},
		{
			name:    "region update",
			n:       api.Notification{Type: api.NotificationRegionUpdate, RegionSlug: "kyoto"},
			path:    "/regions/kyoto",
			command: "wayfarer-cli region view kyoto",
		},
		{
			name:    "system",
			n:       api.Notification{Type: api.NotificationSystem},
			path:    "/notifications",
			command: "wayfarer-cli notifications list",
		},
		{
			name:    "unknown type",
			n:       api.Notification{Type: "party_invite", PostID: "p1"},
			path:    "/notifications",
			command: "wayfarer-cli notifications list",
		},
		{
			name:    "booking without booking id",
			n:       api.Notification{Type: api.NotificationBookingCancelled},
			path:    "/notifications",
			command: "wayfarer-cli notifications list",
		},
		{
			name:    "reply without post id",
			n:       api.Notification{Type: api.NotificationForumReply, CommentID: "c1"},
			path:    "/notifications",
			command: "wayfarer-cli notifications list",
		},
		{
			name:    "ids are escaped",
			n:       api.Notification{Type: api.NotificationRegionUpdate, RegionSlug: "são paulo"},
			path:    "/regions/s%C3%A3o%20paulo",
			command: "wayfarer-cli region view são paulo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := Route(tt.n, web)
			assert.Equal(t, tt.path, link.Path)
			assert.Equal(t, "https://wayfarer.example"+tt.path, link.URL)
			assert.Equal(t, tt.command, link.Command)
		})
	}
}
