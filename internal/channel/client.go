// Package channel maintains the persistent push connection to the realtime
// chat server: websocket transport only, automatic reconnection, typed
// inbound events republished on the bus.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chatdesk/internal/bus"
	"chatdesk/internal/status"
)

const (
	writeWait      = 10 * time.Second
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// ErrNotConnected is returned by Emit while the channel is down. The send
// path is fire-and-forget; the caller decides what to do with the failure.
var ErrNotConnected = errors.New("channel not connected")

// Client owns the websocket connection to the push server.
type Client struct {
	url     string
	bus     *bus.Bus
	machine *status.Machine
	logger  *zap.Logger

	mu   sync.Mutex // guards conn and writes to it
	conn *websocket.Conn

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a client for the given websocket URL.
func New(url string, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *Client {
	return &Client{
		url:     url,
		bus:     b,
		machine: machine,
		logger:  logger,
	}
}

// Start begins the connect/read/reconnect loop in the background.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx)
}

// Stop tears the connection down and stops reconnecting.
func (c *Client) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
	<-c.done
}

// Connected reports whether a live connection is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Emit sends an event frame over the channel. Fails with ErrNotConnected
// while the connection is down.
func (c *Client) Emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", event, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("write %s: %w", event, err)
	}
	return nil
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	backoff := initialBackoff
	_ = c.machine.Transition(status.Connecting)

	for {
		connID := uuid.New().String()
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				_ = c.machine.Transition(status.Disconnected)
				return
			}
			c.logger.Warn("dial failed",
				zap.String("url", c.url),
				zap.String("conn_id", connID),
				zap.Duration("retry_in", backoff),
				zap.Error(err))
			_ = c.machine.Transition(status.Reconnecting)
			if !c.sleep(ctx, backoff) {
				_ = c.machine.Transition(status.Disconnected)
				return
			}
			backoff = min(backoff*2, maxBackoff)
			_ = c.machine.Transition(status.Connecting)
			continue
		}

		backoff = initialBackoff
		c.setConn(conn)
		_ = c.machine.Transition(status.Connected)
		c.logger.Info("channel connected", zap.String("conn_id", connID))
		c.bus.Emit("channel.connected", connID)

		c.readLoop(ctx, conn, connID)
		c.setConn(nil)
		_ = conn.Close()

		if ctx.Err() != nil {
			_ = c.machine.Transition(status.Disconnected)
			c.bus.Emit("channel.disconnected", connID)
			return
		}

		c.logger.Warn("channel dropped", zap.String("conn_id", connID))
		_ = c.machine.Transition(status.Reconnecting)
		c.bus.Emit("channel.disconnected", connID)

		if !c.sleep(ctx, backoff) {
			_ = c.machine.Transition(status.Disconnected)
			return
		}
		backoff = min(backoff*2, maxBackoff)
		_ = c.machine.Transition(status.Connecting)
	}
}

// readLoop pumps inbound frames until the connection fails. Malformed frames
// are logged and skipped; the connection stays up.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, connID string) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", zap.String("conn_id", connID), zap.Error(err))
			}
			return
		}

		kind, payload, err := Decode(raw)
		if err != nil {
			c.logger.Warn("dropping frame", zap.String("conn_id", connID), zap.Error(err))
			continue
		}
		c.bus.Emit(kind, payload)
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

// sleep waits for d or until ctx is cancelled; reports whether to keep going.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
