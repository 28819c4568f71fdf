package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRefboxHost      = "localhost"
	DefaultRefboxPort      = 4444
	DefaultTransport       = TransportTCP
	DefaultDialTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 5 * time.Second
	DefaultWSScheme        = "ws"
	DefaultWSPath          = "/"
	DefaultPingInterval    = 30 * time.Second
	DefaultPingTimeout     = 60 * time.Second
	DefaultHTTPPort        = 8080
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
)

func (c *BridgeConfig) applyDefaults() {
	// Refbox defaults
	if c.Refbox.Host == "" {
		c.Refbox.Host = DefaultRefboxHost
	}
	if c.Refbox.Port == 0 {
		c.Refbox.Port = DefaultRefboxPort
	}
	if c.Refbox.Transport == "" {
		c.Refbox.Transport = DefaultTransport
	}
	if c.Refbox.DialTimeout == 0 {
		c.Refbox.DialTimeout = DefaultDialTimeout
	}
	if c.Refbox.WriteTimeout == 0 {
		c.Refbox.WriteTimeout = DefaultWriteTimeout
	}

	// WebSocket defaults
	if c.Refbox.WebSocket.Scheme == "" {
		c.Refbox.WebSocket.Scheme = DefaultWSScheme
	}
	if c.Refbox.WebSocket.Path == "" {
		c.Refbox.WebSocket.Path = DefaultWSPath
	}
	if c.Refbox.WebSocket.PingInterval == 0 {
		c.Refbox.WebSocket.PingInterval = DefaultPingInterval
	}
	if c.Refbox.WebSocket.PingTimeout == 0 {
		c.Refbox.WebSocket.PingTimeout = DefaultPingTimeout
	}

	// HTTP defaults
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultHTTPPort
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
