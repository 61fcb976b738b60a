package websocket

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"

	"github.com/zfogg/wayfarer/cli/pkg/config"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeNotification         MessageType = "notification"
	MessageTypeNotificationRead     MessageType = "notification_read"
	MessageTypeNotificationsReadAll MessageType = "notifications_read_all"
	MessageTypeHeartbeat            MessageType = "heartbeat"
	MessageTypePong                 MessageType = "pong"
	MessageTypeError                MessageType = "error"

	// MessageTypeAny subscribes to every message
	MessageTypeAny MessageType = ""
)

// ErrNotConnected is returned by Send while no connection is open
var ErrNotConnected = errors.New("websocket not connected")

// Message is the envelope for every frame in both directions
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into v
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s message has no payload", m.Type)
	}
	return json.Unmarshal(m.Payload, v)
}

// Handler receives messages on the read goroutine, in arrival order
type Handler func(Message)

// Config holds WebSocket client configuration
type Config struct {
	URL                  string
	ConnectTimeoutMs     int
	HeartbeatIntervalMs  int
	ReconnectBaseDelayMs int
	ReconnectMaxDelayMs  int
	MaxReconnectAttempts int
}

// DefaultConfig returns the configuration for the configured backend
func DefaultConfig() Config {
	return Config{
		URL:                  config.WebSocketURL(),
		ConnectTimeoutMs:     15000,
		HeartbeatIntervalMs:  30000,
		ReconnectBaseDelayMs: 2000,
		ReconnectMaxDelayMs:  30000,
		MaxReconnectAttempts: -1, // unlimited
	}
}

// ConnectionState represents the state of the WebSocket connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastError        string
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

type listener struct {
	id int
	fn Handler
}

// Client manages one push connection with automatic reconnects. A Client
// is single use: after Disconnect it cannot connect again.
type Client struct {
	config Config

	mu      sync.RWMutex
	conn    *websocket.Conn
	userID  string
	token   string
	writeMu sync.Mutex

	state atomic.Value // ConnectionState

	listenersMu  sync.RWMutex
	listeners    map[MessageType][]listener
	nextListener int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// owned by the run goroutine
	reconnectAttempts int
	reconnectDelay    int

	statsLock sync.RWMutex
	stats     ConnectionStats
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		config:         config,
		listeners:      make(map[MessageType][]listener),
		ctx:            ctx,
		cancel:         cancel,
		reconnectDelay: config.ReconnectBaseDelayMs,
	}
	client.state.Store(StateDisconnected)
	return client
}

// SetCredentials sets the identity sent on the next dial
func (c *Client) SetCredentials(userID, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.token = token
}

// Connect dials the server once and then keeps the connection alive in the
// background. The initial dial error is returned and nothing is retried.
func (c *Client) Connect(userID, token string) error {
	if c.ctx.Err() != nil {
		return errors.New("websocket client closed")
	}
	c.SetCredentials(userID, token)
	c.setState(StateConnecting)

	conn, err := c.dial()
	if err != nil {
		c.setState(StateError)
		c.recordError(err.Error())
		return err
	}

	c.wg.Add(1)
	go c.run(conn)
	return nil
}

// ConnectInBackground starts the reconnect loop without waiting for the
// first dial to succeed.
func (c *Client) ConnectInBackground(userID, token string) {
	if c.ctx.Err() != nil {
		return
	}
	c.SetCredentials(userID, token)
	c.setState(StateConnecting)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		conn, err := c.dial()
		if err != nil {
			c.recordError(err.Error())
			logger.Warn("WebSocket connect failed, retrying", "error", err)
			conn = c.reconnect()
			if conn == nil {
				return
			}
		}

		c.wg.Add(1)
		c.run(conn)
	}()
}

// Disconnect closes the connection and waits for background goroutines
func (c *Client) Disconnect() error {
	c.cancel()

	c.mu.Lock()
	if c.conn != nil {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.conn.Close()
	}
	c.mu.Unlock()

	c.wg.Wait()

	c.setState(StateDisconnected)
	logger.Debug("WebSocket disconnected")
	return nil
}

// IsConnected returns true if the connection is established
func (c *Client) IsConnected() bool {
	return c.getState() == StateConnected
}

// State returns the current connection state
func (c *Client) State() ConnectionState {
	return c.getState()
}

// On subscribes to a message type; MessageTypeAny receives everything.
// The returned func removes the subscription.
func (c *Client) On(msgType MessageType, fn Handler) func() {
	c.listenersMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[msgType] = append(c.listeners[msgType], listener{id: id, fn: fn})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()

		ls := c.listeners[msgType]
		for i, l := range ls {
			if l.id == id {
				c.listeners[msgType] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
	}
}

// Send sends a message to the server
func (c *Client) Send(msgType MessageType, payload interface{}) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = raw
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.recordMessageSent()
	return nil
}

// GetStats returns connection statistics
func (c *Client) GetStats() ConnectionStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()
	return c.stats
}

// Private methods

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return "", fmt.Errorf("invalid websocket url %q: %w", c.config.URL, err)
	}

	c.mu.RLock()
	userID, token := c.userID, c.token
	c.mu.RUnlock()

	q := u.Query()
	if userID != "" {
		q.Set("user_id", userID)
	}
	if token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) dial() (*websocket.Conn, error) {
	endpoint, err := c.endpoint()
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: time.Duration(c.config.ConnectTimeoutMs) * time.Millisecond,
	}
	conn, _, err := dialer.DialContext(c.ctx, endpoint, nil)
	return conn, err
}

// run serves conn, then keeps reconnecting until the client is closed or
// the attempt budget is spent.
func (c *Client) run(conn *websocket.Conn) {
	defer c.wg.Done()

	for conn != nil {
		c.serve(conn)
		if c.ctx.Err() != nil {
			return
		}
		conn = c.reconnect()
	}
}

func (c *Client) serve(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected)
	c.reconnectAttempts = 0
	c.reconnectDelay = c.config.ReconnectBaseDelayMs
	c.recordConnected()
	logger.Debug("WebSocket connected", "url", c.config.URL)

	// A close racing with Disconnect must still unblock the read below
	if c.ctx.Err() != nil {
		conn.Close()
	}

	stopHeartbeat := make(chan struct{})
	var heartbeat sync.WaitGroup
	heartbeat.Add(1)
	go func() {
		defer heartbeat.Done()
		c.heartbeatLoop(stopHeartbeat)
	}()

	c.readLoop(conn)

	close(stopHeartbeat)
	heartbeat.Wait()

	c.mu.Lock()
	conn.Close()
	c.conn = nil
	c.mu.Unlock()

	c.recordDisconnected()
	if c.ctx.Err() == nil {
		c.setState(StateReconnecting)
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				c.recordError(err.Error())
				logger.Warn("WebSocket read error", "error", err)
			}
			return
		}

		c.recordMessageReceived()

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("Dropping malformed WebSocket message", "error", err)
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	c.listenersMu.RLock()
	var fns []Handler
	for _, l := range c.listeners[msg.Type] {
		fns = append(fns, l.fn)
	}
	if msg.Type != MessageTypeAny {
		for _, l := range c.listeners[MessageTypeAny] {
			fns = append(fns, l.fn)
		}
	}
	c.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(msg)
	}
}

func (c *Client) heartbeatLoop(stop <-chan struct{}) {
	if c.config.HeartbeatIntervalMs <= 0 {
		<-stop
		return
	}

	ticker := time.NewTicker(time.Duration(c.config.HeartbeatIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.Send(MessageTypeHeartbeat, nil); err != nil {
				logger.Debug("Failed to send heartbeat", "error", err)
			}
		}
	}
}

// reconnect dials with exponential backoff and jitter. It returns nil when
// the client is closed or MaxReconnectAttempts is reached.
func (c *Client) reconnect() *websocket.Conn {
	c.setState(StateReconnecting)

	for {
		if c.config.MaxReconnectAttempts >= 0 && c.reconnectAttempts >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Max reconnection attempts reached")
			return nil
		}

		waitTime := c.backoff()
		logger.Debug("Reconnecting WebSocket", "attempt", c.reconnectAttempts+1, "wait_ms", waitTime.Milliseconds())

		select {
		case <-c.ctx.Done():
			return nil
		case <-time.After(waitTime):
		}

		conn, err := c.dial()
		if err != nil {
			c.recordError(err.Error())
			c.reconnectAttempts++
			c.reconnectDelay = nextDelay(c.reconnectDelay, c.config.ReconnectMaxDelayMs)
			continue
		}

		c.recordReconnect()
		logger.Info("WebSocket reconnected")
		return conn
	}
}

func (c *Client) backoff() time.Duration {
	backoff := time.Duration(c.reconnectDelay) * time.Millisecond
	jitter := time.Duration(rand.Int63n(int64(backoff)/4 + 1))
	return backoff + jitter
}

// nextDelay doubles delay, capped at max
func nextDelay(delay, max int) int {
	if delay <= 0 {
		delay = 1
	}
	if delay*2 > max {
		return max
	}
	return delay * 2
}

func (c *Client) setState(state ConnectionState) {
	c.state.Store(state)
}

func (c *Client) getState() ConnectionState {
	return c.state.Load().(ConnectionState)
}

func (c *Client) recordMessageReceived() {
	c.statsLock.Lock()
	c.stats.MessagesReceived++
	c.statsLock.Unlock()
}

func (c *Client) recordMessageSent() {
	c.statsLock.Lock()
	c.stats.MessagesSent++
	c.statsLock.Unlock()
}

func (c *Client) recordReconnect() {
	c.statsLock.Lock()
	c.stats.ReconnectCount++
	c.statsLock.Unlock()
}

func (c *Client) recordError(errMsg string) {
	c.statsLock.Lock()
	c.stats.LastError = errMsg
	c.statsLock.Unlock()
}

func (c *Client) recordConnected() {
	c.statsLock.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsLock.Unlock()
}

func (c *Client) recordDisconnected() {
	c.statsLock.Lock()
	c.stats.DisconnectedAt = time.Now()
	c.statsLock.Unlock()
}
