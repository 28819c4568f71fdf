package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rickgao/refbox-bridge/internal/refbox"
)

// WSClient tunnels protobuf_comm frames over a WebSocket, one frame per
// binary message. Used when the refbox is only reachable through a
// WebSocket gateway.
type WSClient struct {
	handlers

	cfg    WSClientConfig
	logger *slog.Logger

	// Write serialization
	writeMu sync.Mutex

	// State
	mu         sync.Mutex
	conn       *websocket.Conn
	cancel     context.CancelFunc
	running    bool
	lastPongAt time.Time
	stale      bool
}

// NewWSClient creates a new WebSocket tunnel client.
func NewWSClient(cfg WSClientConfig, logger *slog.Logger) *WSClient {
	if logger == nil {
		logger = slog.Default()
	}

	return &WSClient{
		cfg:    cfg,
		logger: logger,
	}
}

// URL returns the tunnel URL for host:port.
func (c *WSClient) URL(host string, port uint32) string {
	scheme := c.cfg.Scheme
	if scheme == "" {
		scheme = "ws"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10)),
		Path:   c.cfg.Path,
	}
	return u.String()
}

// AsyncConnect starts the WebSocket handshake in the background.
// It is a no-op while a previous attempt or connection is still alive.
func (c *WSClient) AsyncConnect(host string, port uint32) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		c.logger.Debug("connect ignored, connection already active")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.running = true
	c.cancel = cancel
	c.stale = false
	c.mu.Unlock()

	go c.run(ctx, c.URL(host, port))
}

// Disconnect sends a close message and closes the connection, or cancels a
// pending handshake.
func (c *WSClient) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	conn := c.conn
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}
}

// Send writes one framed message as a binary WebSocket message.
func (c *WSClient) Send(componentID, msgType uint16, payload []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	frame := refbox.EncodeFrame(componentID, msgType, payload)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// IsConnected returns true while the WebSocket is established.
func (c *WSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// run owns one connection attempt from handshake to teardown.
func (c *WSClient) run(ctx context.Context, wsURL string) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		local := ctx.Err() != nil
		c.finish(nil)
		if local {
			c.fireDisconnected(nil)
			return
		}
		c.fireDisconnected(fmt.Errorf("dial %s: %w", wsURL, err))
		return
	}

	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		conn.Close()
		c.finish(nil)
		c.fireDisconnected(nil)
		return
	}
	c.conn = conn
	c.lastPongAt = time.Now()
	c.mu.Unlock()

	// Server pings count as liveness too
	conn.SetPingHandler(func(data string) error {
		c.touch()
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(time.Second),
		)
	})
	conn.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})

	c.logger.Debug("refbox websocket connected", "url", wsURL)
	c.fireConnected()

	done := make(chan struct{})
	go c.heartbeatLoop(conn, done)

	err = c.readLoop(conn)
	close(done)

	c.mu.Lock()
	stale := c.stale
	c.mu.Unlock()

	local := ctx.Err() != nil && !stale
	c.finish(conn)
	switch {
	case local:
		c.logger.Debug("refbox websocket closed", "url", wsURL)
		c.fireDisconnected(nil)
	case stale:
		c.fireDisconnected(ErrStaleConnection)
	default:
		c.fireDisconnected(err)
	}
}

func (c *WSClient) touch() {
	c.mu.Lock()
	c.lastPongAt = time.Now()
	c.mu.Unlock()
}

// finish clears connection state so a new attempt may start.
func (c *WSClient) finish(conn *websocket.Conn) {
	if conn != nil {
		conn.Close()
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.conn = nil
	c.cancel = nil
	c.running = false
	c.mu.Unlock()
}

// readLoop reads binary messages and decodes them as frames.
func (c *WSClient) readLoop(conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if msgType != websocket.BinaryMessage {
			c.logger.Debug("ignoring non-binary message", "type", msgType, "size", len(data))
			continue
		}

		f, err := refbox.DecodeFrame(data)
		if err != nil {
			if errors.Is(err, refbox.ErrUnsupportedVersion) || errors.Is(err, refbox.ErrEncryptedFrame) {
				return err
			}
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}
		c.fireFrame(c.logger, f)
	}
}

// heartbeatLoop pings the peer and closes the connection when it goes stale.
func (c *WSClient) heartbeatLoop(conn *websocket.Conn, done <-chan struct{}) {
	interval := c.cfg.PingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(max(c.cfg.WriteTimeout, time.Second))
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
			}

			c.mu.Lock()
			lastPong := c.lastPongAt
			c.mu.Unlock()

			if c.cfg.PingTimeout > 0 && time.Since(lastPong) > c.cfg.PingTimeout {
				c.logger.Warn("no pong received, connection stale",
					"last_pong", lastPong,
					"timeout", c.cfg.PingTimeout,
				)
				c.mu.Lock()
				c.stale = true
				c.mu.Unlock()
				conn.Close()
				return
			}
		}
	}
}
