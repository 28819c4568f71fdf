package connection

import (
	"errors"
	"fmt"
	"time"
)

// Errors
var (
	ErrNotConnected            = errors.New("not connected")
	ErrNotConfigured           = errors.New("refbox endpoint not configured")
	ErrConfigureWhileConnected = errors.New("cannot reconfigure endpoint while connecting or connected")
	ErrStaleConnection         = errors.New("connection stale (no pong)")
	ErrManagerClosed           = errors.New("manager closed")
)

// ConnectionError reports an abnormal disconnect from the refbox.
type ConnectionError struct {
	Host string
	Port uint32
	Err  error // Reason reported by the transport
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("refbox connection %s:%d lost: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ConnectionState is the last state observed from the transport.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting                   // Attempt requested, no callback yet
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	Host              string // Refbox host (may be set later via Configure)
	Port              uint32 // Refbox port
	StrictTranslation bool   // Reject unknown color option values
	ErrorBufferSize   int    // Buffer size of the Errors() channel
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Host:            "localhost",
		Port:            4444,
		ErrorBufferSize: 16,
	}
}

// StreamClientConfig configures the TCP protobuf_comm client.
type StreamClientConfig struct {
	DialTimeout  time.Duration // Max time for the TCP handshake
	WriteTimeout time.Duration // Write deadline for sends
	ReadBuffer   int           // bufio reader size for inbound frames
}

// DefaultStreamClientConfig returns sensible defaults.
func DefaultStreamClientConfig() StreamClientConfig {
	return StreamClientConfig{
		DialTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		ReadBuffer:   64 * 1024,
	}
}

// WSClientConfig configures the WebSocket tunnel client.
type WSClientConfig struct {
	Scheme           string        // "ws" or "wss"
	Path             string        // Request path on the tunnel endpoint (e.g., "/refbox")
	HandshakeTimeout time.Duration // Max time for the WebSocket handshake
	PingInterval     time.Duration // Keepalive ping interval
	PingTimeout      time.Duration // Max time without pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for sends
}

// DefaultWSClientConfig returns sensible defaults.
func DefaultWSClientConfig() WSClientConfig {
	return WSClientConfig{
		Scheme:           "ws",
		Path:             "/",
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}
