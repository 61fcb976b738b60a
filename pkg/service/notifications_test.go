package service

import (
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/credentials"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/notify"
	"github.com/zfogg/wayfarer/cli/pkg/websocket"
)

type readLog struct {
	mu  sync.Mutex
	ids []string
}

func (l *readLog) add(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, id)
}

func (l *readLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ids...)
}

func notificationFixture(t *testing.T) (*fixture, *NotificationService, *readLog) {
	t.Helper()
	f := setup(t, credentials.RoleUser)
	marked := &readLog{}

	list := []api.Notification{
		{ID: "n1", Type: api.NotificationForumReply, Message: "bo replied to your post", PostID: "p1", CommentID: "c7", CreatedAt: fixedNow.Add(-5 * time.Minute)},
		{ID: "n2", Type: api.NotificationBookingConfirmed, Message: "Booking confirmed", BookingID: "b3", Read: true, CreatedAt: fixedNow.Add(-time.Hour)},
	}
	f.mux.HandleFunc("GET /api/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
		items := list
		if r.URL.Query().Get("unread") == "true" {
			items = list[:1]
		}
		reply(w, http.StatusOK, api.NotificationListResponse{Notifications: items, UnreadCount: 1, TotalCount: len(items), Page: 1, PageSize: 20})
	})
	f.mux.HandleFunc("PATCH /api/v1/notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "gone" {
			reply(w, http.StatusNotFound, api.ErrorResponse{Code: "not_found", Message: "no such notification"})
			return
		}
		marked.add(id)
		w.WriteHeader(http.StatusNoContent)
	})

	channel := notify.NewChannel(notify.NewStore(), websocket.DefaultConfig())
	ns := NewNotificationService(channel)
	ns.now = func() time.Time { return fixedNow }
	return f, ns, marked
}

func TestNotificationList(t *testing.T) {
	f, ns, _ := notificationFixture(t)

	require.NoError(t, ns.List(t.Context(), 1, 20, false))
	out := f.out.String()
	assert.Contains(t, out, "bo replied to your post")
	assert.Contains(t, out, "5 minutes ago")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "📬 1 unread")
}

func TestNotificationCountIsDerivedLocally(t *testing.T) {
	f, ns, _ := notificationFixture(t)
	f.mux.HandleFunc("GET /api/v1/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]int{"unread_count": 9})
	})

	require.NoError(t, ns.Count(t.Context()))
	assert.Contains(t, f.out.String(), "1 unread notification")
	assert.NotContains(t, f.out.String(), "9")
	assert.Equal(t, 2, ns.channel.Store().Len())
}

func TestNotificationOpenRoutesAndMarksRead(t *testing.T) {
	f, ns, marked := notificationFixture(t)

	require.NoError(t, ns.Open(t.Context(), "n1"))

	out := f.out.String()
	assert.Contains(t, out, "https://wayfarer.test/forum/posts/p1#comment-c7")
	assert.Contains(t, out, "wayfarer-cli post view p1")
	assert.Equal(t, []string{"n1"}, marked.all())

	n, ok := ns.channel.Store().Get("n1")
	require.True(t, ok)
	assert.True(t, n.Read)
	assert.Zero(t, ns.channel.Store().UnreadCount())
}

func TestNotificationOpenAlreadyRead(t *testing.T) {
	f, ns, marked := notificationFixture(t)

	require.NoError(t, ns.Open(t.Context(), "n2"))
	assert.Contains(t, f.out.String(), "https://wayfarer.test/bookings/b3")
	assert.Empty(t, marked.all(), "read notifications are not acknowledged again")
}

func TestNotificationOpenUnknown(t *testing.T) {
	_, ns, _ := notificationFixture(t)

	err := ns.Open(t.Context(), "n404")
	var cliErr *clierrors.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierrors.ErrorTypeNotFound, cliErr.Type)
}

func TestNotificationMarkRead(t *testing.T) {
	f, ns, marked := notificationFixture(t)

	require.NoError(t, ns.MarkRead(t.Context(), "n1"))
	assert.Equal(t, []string{"n1"}, marked.all())
	assert.Contains(t, f.out.String(), "marked as read")

	err := ns.MarkRead(t.Context(), "gone")
	var cliErr *clierrors.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierrors.ErrorTypeNotFound, cliErr.Type)
}

func TestNotificationMarkReadPicksFromUnread(t *testing.T) {
	_, ns, marked := notificationFixture(t)

	answer("1")
	require.NoError(t, ns.MarkRead(t.Context(), ""))
	assert.Equal(t, []string{"n1"}, marked.all())
}
