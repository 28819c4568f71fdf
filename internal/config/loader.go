package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a bridge config file. ${VAR} references are expanded from the
// environment before parsing, so unset variables become empty strings.
func Load(path string) (*BridgeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bridge config: %w", err)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*BridgeConfig, error) {
	var cfg BridgeConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse bridge config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadWithDefaults is Load followed by filling every unset field with its
// default.
func LoadWithDefaults(path string) (*BridgeConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate is LoadWithDefaults followed by Validate. It is what the
// bridge binary uses at startup.
func LoadAndValidate(path string) (*BridgeConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bridge config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file sets anything: a TCP
// connection to localhost:4444 and ingress on :8080.
func Default() *BridgeConfig {
	var cfg BridgeConfig
	cfg.applyDefaults()
	return &cfg
}
