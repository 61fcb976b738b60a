package notify

import (
	"context"
	"sync"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
	"github.com/zfogg/wayfarer/cli/pkg/session"
	"github.com/zfogg/wayfarer/cli/pkg/websocket"
)

// HydratePageSize is how many notifications Start fetches
const HydratePageSize = 50

// Channel connects the store to the backend for one user at a time
type Channel struct {
	store    *Store
	wsConfig websocket.Config

	mu     sync.Mutex
	ws     *websocket.Client
	userID string

	listenersMu sync.RWMutex
	onAdded     map[int]func(api.Notification)
	onUnread    map[int]func(int)
	nextID      int
}

// NewChannel creates a stopped channel backed by store
func NewChannel(store *Store, wsConfig websocket.Config) *Channel {
	return &Channel{
		store:    store,
		wsConfig: wsConfig,
		onAdded:  make(map[int]func(api.Notification)),
		onUnread: make(map[int]func(int)),
	}
}

// Store returns the backing store
func (c *Channel) Store() *Store {
	return c.store
}

// Start hydrates the store from the REST API and opens the push connection.
// ctx bounds the initial fetch only; the connection lives until Stop.
// A failed fetch is logged and the connection is opened anyway.
func (c *Channel) Start(ctx context.Context, userID, token string) error {
	c.Stop()

	resp, err := api.GetNotifications(ctx, 1, HydratePageSize, false)
	if err != nil {
		logger.Warn("Failed to load notifications", "error", err)
	} else {
		c.store.Hydrate(resp.Notifications)
		if derived := c.store.UnreadCount(); resp.UnreadCount != derived && c.store.Len() < resp.TotalCount {
			logger.Debug("Server has unread notifications beyond the first page",
				"server_unread", resp.UnreadCount, "local_unread", derived)
		}
		c.emitUnread(c.store.UnreadCount())
	}

	ws := websocket.NewClient(c.wsConfig)
	ws.On(websocket.MessageTypeNotification, func(msg websocket.Message) {
		c.handlePushed(userID, msg)
	})
	ws.On(websocket.MessageTypeNotificationRead, c.handleRead)
	ws.On(websocket.MessageTypeNotificationsReadAll, func(websocket.Message) {
		if c.store.MarkAllRead() > 0 {
			c.emitUnread(c.store.UnreadCount())
		}
	})
	ws.On(websocket.MessageTypeError, func(msg websocket.Message) {
		logger.Warn("Notification channel error", "payload", string(msg.Payload))
	})

	c.mu.Lock()
	c.ws = ws
	c.userID = userID
	c.mu.Unlock()

	ws.ConnectInBackground(userID, token)
	logger.Debug("Notification channel started", "user_id", userID, "items", c.store.Len())
	return nil
}

// Stop closes the push connection and waits for its goroutines
func (c *Channel) Stop() {
	c.mu.Lock()
	ws := c.ws
	c.ws = nil
	c.userID = ""
	c.mu.Unlock()

	if ws != nil {
		_ = ws.Disconnect()
		logger.Debug("Notification channel stopped")
	}
}

// Running reports whether a push connection is owned by the channel
func (c *Channel) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws != nil
}

// Connected reports whether the push connection is currently up
func (c *Channel) Connected() bool {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	return ws != nil && ws.IsConnected()
}

// MarkRead acknowledges id with the server and then flags it locally. The
// request is sent even for ids the store does not hold.
func (c *Channel) MarkRead(ctx context.Context, id string) error {
	if err := api.MarkNotificationAsRead(ctx, id); err != nil {
		return err
	}
	if c.store.MarkRead(id) {
		c.emitUnread(c.store.UnreadCount())
	}
	return nil
}

// MarkAllRead acknowledges everything with the server and then zeroes the
// local unread count.
func (c *Channel) MarkAllRead(ctx context.Context) error {
	if err := api.MarkAllNotificationsAsRead(ctx); err != nil {
		return err
	}
	if c.store.MarkAllRead() > 0 {
		c.emitUnread(0)
	}
	return nil
}

// OnNotification registers fn for newly pushed notifications
func (c *Channel) OnNotification(fn func(api.Notification)) func() {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.onAdded[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.onAdded, id)
		c.listenersMu.Unlock()
	}
}

// OnUnreadChange registers fn for unread count changes
func (c *Channel) OnUnreadChange(fn func(int)) func() {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.onUnread[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.onUnread, id)
		c.listenersMu.Unlock()
	}
}

// UpdateToken hands a refreshed access token to the running connection so
// later reconnects dial with it. It reports false when no connection for
// userID is running.
func (c *Channel) UpdateToken(userID, token string) bool {
	c.mu.Lock()
	ws, running := c.ws, c.userID
	c.mu.Unlock()

	if ws == nil || running != userID {
		return false
	}
	ws.SetCredentials(userID, token)
	logger.Debug("Notification channel token updated", "user_id", userID)
	return true
}

// BindSession starts the channel when m signs in and stops it, clearing the
// store, when m signs out. A session that is already active starts the
// channel immediately.
func (c *Channel) BindSession(m *session.Manager) func() {
	unsubscribe := m.OnChange(func(state session.State) {
		if state.Refreshed && state.Credentials != nil && c.UpdateToken(state.Credentials.UserID, state.Credentials.AccessToken) {
			return
		}
		if state.Authenticated && state.Credentials != nil {
			if err := c.Start(context.Background(), state.Credentials.UserID, state.Credentials.AccessToken); err != nil {
				logger.Warn("Failed to start notification channel", "error", err)
			}
			return
		}
		c.Stop()
		c.store.Clear()
		c.emitUnread(0)
	})

	if creds := m.Current(); creds != nil && m.IsAuthenticated() {
		if err := c.Start(context.Background(), creds.UserID, creds.AccessToken); err != nil {
			logger.Warn("Failed to start notification channel", "error", err)
		}
	}

	return unsubscribe
}

func (c *Channel) handlePushed(userID string, msg websocket.Message) {
	var n api.Notification
	if err := msg.Decode(&n); err != nil {
		logger.Warn("Dropping malformed notification", "error", err)
		return
	}
	if n.UserID != "" && n.UserID != userID {
		logger.Debug("Ignoring notification for another user", "notification_id", n.ID)
		return
	}

	wasUnread := c.store.UnreadCount()
	if !c.store.Push(n) {
		logger.Debug("Replaced notification", "notification_id", n.ID)
	} else {
		c.emitAdded(n)
	}
	if unread := c.store.UnreadCount(); unread != wasUnread {
		c.emitUnread(unread)
	}
}

func (c *Channel) handleRead(msg websocket.Message) {
	var payload struct {
		ID             string `json:"id"`
		NotificationID string `json:"notification_id"`
	}
	if err := msg.Decode(&payload); err != nil {
		logger.Warn("Dropping malformed read event", "error", err)
		return
	}

	id := payload.ID
	if id == "" {
		id = payload.NotificationID
	}
	if c.store.MarkRead(id) {
		c.emitUnread(c.store.UnreadCount())
	}
}

func (c *Channel) emitAdded(n api.Notification) {
	c.listenersMu.RLock()
	fns := make([]func(api.Notification), 0, len(c.onAdded))
	for _, fn := range c.onAdded {
		fns = append(fns, fn)
	}
	c.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(n)
	}
}

func (c *Channel) emitUnread(count int) {
	c.listenersMu.RLock()
	fns := make([]func(int), 0, len(c.onUnread))
	for _, fn := range c.onUnread {
		fns = append(fns, fn)
	}
	c.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(count)
	}
}
