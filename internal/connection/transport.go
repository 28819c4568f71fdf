package connection

import (
	"log/slog"
	"sync"

	"github.com/rickgao/refbox-bridge/internal/refbox"
)

// Transport is a streaming client to the refbox.
//
// AsyncConnect and Disconnect return immediately; completion is reported
// through the handlers registered with OnConnected and OnDisconnected. For a
// given connection attempt the handlers are called from a single goroutine,
// connected (if the attempt succeeds) strictly before disconnected.
// OnDisconnected receives nil when the teardown was requested locally.
type Transport interface {
	// AsyncConnect starts a connection attempt to host:port.
	AsyncConnect(host string, port uint32)

	// Disconnect tears down the connection or cancels a pending attempt.
	Disconnect()

	// Send writes one message. It returns ErrNotConnected when there is no
	// established connection.
	Send(componentID, msgType uint16, payload []byte) error

	// OnConnected registers the connected handler.
	OnConnected(fn func())

	// OnDisconnected registers the disconnected handler.
	OnDisconnected(fn func(err error))
}

// FrameHandler receives frames sent by the refbox.
type FrameHandler func(refbox.Frame)

// handlers holds the registered transport callbacks.
type handlers struct {
	mu           sync.RWMutex
	connected    func()
	disconnected func(error)
	frame        FrameHandler
}

func (h *handlers) OnConnected(fn func()) {
	h.mu.Lock()
	h.connected = fn
	h.mu.Unlock()
}

func (h *handlers) OnDisconnected(fn func(err error)) {
	h.mu.Lock()
	h.disconnected = fn
	h.mu.Unlock()
}

// OnFrame registers a handler for inbound frames.
func (h *handlers) OnFrame(fn FrameHandler) {
	h.mu.Lock()
	h.frame = fn
	h.mu.Unlock()
}

func (h *handlers) fireConnected() {
	h.mu.RLock()
	fn := h.connected
	h.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (h *handlers) fireDisconnected(err error) {
	h.mu.RLock()
	fn := h.disconnected
	h.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

func (h *handlers) fireFrame(logger *slog.Logger, f refbox.Frame) {
	h.mu.RLock()
	fn := h.frame
	h.mu.RUnlock()
	if fn != nil {
		fn(f)
		return
	}
	logger.Debug("inbound frame",
		"component_id", f.ComponentID,
		"msg_type", f.MsgType,
		"size", len(f.Payload),
	)
}
