package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *BridgeConfig) Validate() error {
	if c.Refbox.Host == "" {
		return errors.New("refbox.host is required")
	}
	if c.Refbox.Port < 1 || c.Refbox.Port > 65535 {
		return fmt.Errorf("refbox.port must be between 1 and 65535, got %d", c.Refbox.Port)
	}

	switch c.Refbox.Transport {
	case TransportTCP:
	case TransportWebSocket:
		if err := c.Refbox.WebSocket.validate("refbox.websocket"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("refbox.transport must be %q or %q, got %q", TransportTCP, TransportWebSocket, c.Refbox.Transport)
	}

	if c.Refbox.DialTimeout < 0 {
		return errors.New("refbox.dial_timeout must be >= 0")
	}
	if c.Refbox.WriteTimeout < 0 {
		return errors.New("refbox.write_timeout must be >= 0")
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

func (ws *WSConfig) validate(prefix string) error {
	if ws.Scheme != "ws" && ws.Scheme != "wss" {
		return fmt.Errorf("%s.scheme must be ws or wss, got %q", prefix, ws.Scheme)
	}
	if !strings.HasPrefix(ws.Path, "/") {
		return fmt.Errorf("%s.path must start with /", prefix)
	}
	if ws.PingInterval <= 0 {
		return fmt.Errorf("%s.ping_interval must be > 0", prefix)
	}
	if ws.PingTimeout < ws.PingInterval {
		return fmt.Errorf("%s.ping_timeout (%v) cannot be less than ping_interval (%v)", prefix, ws.PingTimeout, ws.PingInterval)
	}
	return nil
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", level)
}
