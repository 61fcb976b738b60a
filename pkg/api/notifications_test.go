package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNotifications(t *testing.T) {
	newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("unread"))
		writeJSON(t, w, http.StatusOK, NotificationListResponse{
			Notifications: []Notification{
				{ID: "n1", Type: NotificationForumReply, PostID: "p1", CommentID: "c2"},
			},
			UnreadCount: 1,
			Page:        1,
		})
	}))

	resp, err := GetNotifications(context.Background(), 1, 10, true)
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, NotificationForumReply, resp.Notifications[0].Type)
	assert.Equal(t, 1, resp.UnreadCount)
}

func TestNotificationCounters(t *testing.T) {
	var marked []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]int{"unread_count": 3})
	})
	mux.HandleFunc("/api/v1/notifications/n1/read", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		marked = append(marked, "n1")
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/v1/notifications/read-all", func(w http.ResponseWriter, r *http.Request) {
		marked = append(marked, "*")
		w.WriteHeader(http.StatusNoContent)
	})
	newTestServer(t, mux)
	ctx := context.Background()

	count, err := GetUnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, MarkNotificationAsRead(ctx, "n1"))
	require.NoError(t, MarkAllNotificationsAsRead(ctx))
	assert.Equal(t, []string{"n1", "*"}, marked)

	err = MarkNotificationAsRead(ctx, "n404")
	assert.True(t, IsNotFound(err))
}
