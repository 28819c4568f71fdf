package connection

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rickgao/refbox-bridge/internal/refbox"
)

// StreamClient is a protobuf_comm client speaking framed protobuf over TCP,
// the native refbox protocol.
type StreamClient struct {
	handlers

	cfg    StreamClientConfig
	logger *slog.Logger

	// Write serialization
	writeMu sync.Mutex

	// State
	mu      sync.Mutex
	conn    net.Conn
	cancel  context.CancelFunc
	running bool // An attempt or connection is alive
}

// NewStreamClient creates a new TCP client.
func NewStreamClient(cfg StreamClientConfig, logger *slog.Logger) *StreamClient {
	if logger == nil {
		logger = slog.Default()
	}

	return &StreamClient{
		cfg:    cfg,
		logger: logger,
	}
}

// AsyncConnect starts dialing host:port in the background.
// It is a no-op while a previous attempt or connection is still alive.
func (c *StreamClient) AsyncConnect(host string, port uint32) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		c.logger.Debug("connect ignored, connection already active")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.running = true
	c.cancel = cancel
	c.mu.Unlock()

	addr := net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
	go c.run(ctx, addr)
}

// Disconnect closes the connection or cancels a pending dial.
func (c *StreamClient) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	conn := c.conn
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		// Unblocks the read loop
		conn.Close()
	}
}

// Send writes one framed message.
func (c *StreamClient) Send(componentID, msgType uint16, payload []byte) error {
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
	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// IsConnected returns true while a TCP connection is established.
func (c *StreamClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// run owns one connection attempt from dial to teardown.
func (c *StreamClient) run(ctx context.Context, addr string) {
	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		local := ctx.Err() != nil
		c.finish(nil)
		if local {
			c.fireDisconnected(nil)
			return
		}
		c.fireDisconnected(fmt.Errorf("dial %s: %w", addr, err))
		return
	}

	c.mu.Lock()
	if ctx.Err() != nil {
		// Disconnect raced with a successful dial
		c.mu.Unlock()
		conn.Close()
		c.finish(nil)
		c.fireDisconnected(nil)
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Debug("refbox stream connected", "addr", addr)
	c.fireConnected()

	err = c.readLoop(conn)

	// Checked before finish, which cancels ctx itself.
	local := ctx.Err() != nil
	c.finish(conn)
	if local {
		c.logger.Debug("refbox stream closed", "addr", addr)
		c.fireDisconnected(nil)
		return
	}
	c.fireDisconnected(err)
}

// finish clears connection state so a new attempt may start.
func (c *StreamClient) finish(conn net.Conn) {
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

// readLoop reads frames until the connection fails.
func (c *StreamClient) readLoop(conn net.Conn) error {
	size := c.cfg.ReadBuffer
	if size <= 0 {
		size = 4096
	}
	r := bufio.NewReaderSize(conn, size)

	for {
		f, err := refbox.ReadFrame(r)
		if err != nil {
			return err
		}
		c.fireFrame(c.logger, f)
	}
}
