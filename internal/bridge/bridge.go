package bridge

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rickgao/refbox-bridge/internal/config"
	"github.com/rickgao/refbox-bridge/internal/connection"
	"github.com/rickgao/refbox-bridge/internal/refbox"
)

// Transport is a refbox transport that can also report inbound frames.
type Transport interface {
	connection.Transport
	OnFrame(fn connection.FrameHandler)
}

// NewTransport builds the transport selected by cfg.Transport.
func NewTransport(cfg config.RefboxConfig, logger *slog.Logger) (Transport, error) {
	switch cfg.Transport {
	case config.TransportTCP, "":
		streamCfg := connection.DefaultStreamClientConfig()
		streamCfg.DialTimeout = cfg.DialTimeout
		streamCfg.WriteTimeout = cfg.WriteTimeout
		return connection.NewStreamClient(streamCfg, logger), nil

	case config.TransportWebSocket:
		wsCfg := connection.DefaultWSClientConfig()
		wsCfg.Scheme = cfg.WebSocket.Scheme
		wsCfg.Path = cfg.WebSocket.Path
		wsCfg.HandshakeTimeout = cfg.DialTimeout
		wsCfg.WriteTimeout = cfg.WriteTimeout
		wsCfg.PingInterval = cfg.WebSocket.PingInterval
		wsCfg.PingTimeout = cfg.WebSocket.PingTimeout
		return connection.NewWSClient(wsCfg, logger), nil
	}
	return nil, fmt.Errorf("unknown refbox transport %q", cfg.Transport)
}

// NewManager builds the transport and a connection manager configured for
// the refbox endpoint in cfg. Inbound refbox frames are logged at debug level.
func NewManager(cfg *config.BridgeConfig, logger *slog.Logger) (*connection.Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	transport, err := NewTransport(cfg.Refbox, logger)
	if err != nil {
		return nil, err
	}

	transport.OnFrame(func(f refbox.Frame) {
		logger.Debug("refbox message",
			"component_id", f.ComponentID,
			"msg_type", f.MsgType,
			"bytes", len(f.Payload),
		)
	})

	mgrCfg := connection.DefaultManagerConfig()
	mgrCfg.Host = cfg.Refbox.Host
	mgrCfg.Port = cfg.Refbox.Port
	mgrCfg.StrictTranslation = cfg.Translation.Strict

	return connection.NewManager(mgrCfg, transport, logger), nil
}

// NewLogger creates a text logger at the configured level.
func NewLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
