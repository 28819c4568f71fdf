package connection

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rickgao/refbox-bridge/internal/model"
	"github.com/rickgao/refbox-bridge/internal/translate"
)

// Manager owns the refbox transport and gates order delivery on the
// connection state.
type Manager struct {
	transport  Transport
	translator translate.Translator
	logger     *slog.Logger

	// Abnormal disconnects for the owner
	errors chan error

	// State, written by transport callbacks and Connect
	mu     sync.RWMutex
	host   string
	port   uint32
	state  ConnectionState
	closed bool
}

// NewManager creates a Connection Manager and registers its callbacks on the
// transport.
func NewManager(cfg ManagerConfig, transport Transport, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	bufSize := cfg.ErrorBufferSize
	if bufSize <= 0 {
		bufSize = 1
	}

	m := &Manager{
		transport:  transport,
		translator: translate.Translator{Strict: cfg.StrictTranslation},
		logger:     logger,
		errors:     make(chan error, bufSize),
		host:       cfg.Host,
		port:       cfg.Port,
	}

	transport.OnConnected(m.onConnected)
	transport.OnDisconnected(m.onDisconnected)

	return m
}

// Configure sets the refbox endpoint used by the next Connect. It fails
// while a connection is pending or established.
func (m *Manager) Configure(host string, port uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateDisconnected {
		return ErrConfigureWhileConnected
	}
	m.host = host
	m.port = port
	return nil
}

// Host returns the configured refbox host.
func (m *Manager) Host() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.host
}

// Port returns the configured refbox port.
func (m *Manager) Port() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.port
}

// Connect requests a connection to the configured endpoint and returns
// without waiting. It is a no-op when connected or when an attempt is
// already pending.
func (m *Manager) Connect() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	if m.host == "" {
		m.mu.Unlock()
		return ErrNotConfigured
	}
	if m.state != StateDisconnected {
		m.mu.Unlock()
		return nil
	}
	m.state = StateConnecting
	host, port := m.host, m.port
	m.mu.Unlock()

	m.logger.Info("connecting to refbox", "host", host, "port", port)
	m.transport.AsyncConnect(host, port)
	return nil
}

// Disconnect requests teardown of the connection. The state becomes
// Disconnected when the transport confirms it.
func (m *Manager) Disconnect() {
	m.mu.RLock()
	state := m.state
	m.mu.RUnlock()

	if state == StateDisconnected {
		return
	}

	m.logger.Info("disconnecting from refbox", "state", state)
	m.transport.Disconnect()
}

// IsConnected returns the last observed connection state.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateConnected
}

// State returns the last observed connection state.
func (m *Manager) State() ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Errors returns the channel of *ConnectionError values for abnormal
// disconnects. It is closed by Close.
func (m *Manager) Errors() <-chan error {
	return m.errors
}

// SendOrder translates the order and hands it to the transport.
//
// It returns false without translating when not connected. Translation and
// transport failures are returned as errors. True means the transport
// accepted the message, not that the refbox processed it.
func (m *Manager) SendOrder(order model.Order) (bool, error) {
	if !m.IsConnected() {
		return false, nil
	}

	info, err := m.translator.Translate(order)
	if err != nil {
		return false, fmt.Errorf("translate order: %w", err)
	}

	payload := info.Marshal()
	if err := m.transport.Send(info.ComponentID(), info.MsgType(), payload); err != nil {
		if errors.Is(err, ErrNotConnected) {
			// Connection dropped after the state check
			return false, nil
		}
		return false, fmt.Errorf("send order info: %w", err)
	}

	m.logger.Debug("order sent",
		"order_id", order.ID,
		"orders", len(info.Orders),
		"bytes", len(payload),
	)
	return true, nil
}

// Close disconnects and closes the Errors channel. Callbacks arriving after
// Close only update state.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	state := m.state
	close(m.errors)
	m.mu.Unlock()

	if state != StateDisconnected {
		m.transport.Disconnect()
	}
}

func (m *Manager) onConnected() {
	m.mu.Lock()
	m.state = StateConnected
	host, port := m.host, m.port
	m.mu.Unlock()

	m.logger.Info("refbox connected", "host", host, "port", port)
}

func (m *Manager) onDisconnected(reason error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateDisconnected

	if reason == nil {
		m.logger.Info("refbox disconnected", "host", m.host, "port", m.port)
		return
	}

	m.logger.Warn("refbox connection lost",
		"host", m.host,
		"port", m.port,
		"error", reason,
	)

	if m.closed {
		return
	}

	connErr := &ConnectionError{Host: m.host, Port: m.port, Err: reason}
	select {
	case m.errors <- connErr:
	default:
		m.logger.Warn("error buffer full, dropping connection error", "error", reason)
	}
}
