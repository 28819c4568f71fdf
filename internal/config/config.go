package config

import "time"

// BridgeConfig is the root configuration for a bridge instance.
type BridgeConfig struct {
	Refbox      RefboxConfig      `yaml:"refbox"`
	Translation TranslationConfig `yaml:"translation"`
	HTTP        HTTPConfig        `yaml:"http"`
	Log         LogConfig         `yaml:"log"`
}

// Transport names
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

// RefboxConfig holds the refbox endpoint and transport settings.
type RefboxConfig struct {
	Host         string        `yaml:"host"`
	Port         uint32        `yaml:"port"`
	Transport    string        `yaml:"transport"` // "tcp" or "websocket"
	AutoConnect  bool          `yaml:"auto_connect"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	WebSocket    WSConfig      `yaml:"websocket"`
}

// WSConfig holds settings for the WebSocket tunnel transport.
type WSConfig struct {
	Scheme       string        `yaml:"scheme"` // "ws" or "wss"
	Path         string        `yaml:"path"`
	PingInterval time.Duration `yaml:"ping_interval"`
	PingTimeout  time.Duration `yaml:"ping_timeout"`
}

// TranslationConfig holds order translation settings.
type TranslationConfig struct {
	Strict bool `yaml:"strict"` // Reject unknown color values instead of defaulting
}

// HTTPConfig holds the order ingress server settings.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
