package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration for the event indexer.
type Config struct {
	ListenAddress  string `yaml:"listen_address"`
	NodeWSURL      string `yaml:"node_ws_url"`
	DatabaseDriver string `yaml:"database_driver"`
	DatabaseDSN    string `yaml:"database_dsn"`
}

// Default returns the local development configuration backed by an on-disk
// sqlite file.
func Default() *Config {
	return &Config{
		ListenAddress:  ":8670",
		NodeWSURL:      "ws://127.0.0.1:8669/ws/events",
		DatabaseDriver: "sqlite",
		DatabaseDSN:    "indexd.db",
	}
}

// Load reads the configuration at path, falling back to defaults for unset
// fields. A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("indexd: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("indexd: parse config %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = Default().ListenAddress
	}
	if strings.TrimSpace(cfg.NodeWSURL) == "" {
		cfg.NodeWSURL = Default().NodeWSURL
	}
	if strings.TrimSpace(cfg.DatabaseDriver) == "" {
		cfg.DatabaseDriver = Default().DatabaseDriver
	}
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		cfg.DatabaseDSN = Default().DatabaseDSN
	}
	return cfg, cfg.Validate()
}

// Validate rejects unsupported database drivers.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
		return nil
	default:
		return fmt.Errorf("indexd: unsupported database driver %q", c.DatabaseDriver)
	}
}
