package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all hwscan configuration
type Config struct {
	Library  LibraryConfig  `yaml:"library"`
	Fixture  string         `yaml:"fixture"` // Replay a native fixture instead of scanning
	Cache    CacheConfig    `yaml:"cache"`
	API      APIConfig      `yaml:"api"`
	Platform PlatformConfig `yaml:"platform"`
	Log      LogConfig      `yaml:"log"`
}

// LibraryConfig selects the native scanner
type LibraryConfig struct {
	Path   string `yaml:"path"`   // Empty searches the default locations
	Static bool   `yaml:"static"` // Use the scanner linked at build time
}

// CacheConfig configures result caching for the API
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"` // How long a scan result is reused
}

// APIConfig configures the HTTP API
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// PlatformConfig configures capability publishing to the video platform
type PlatformConfig struct {
	URL    string `yaml:"url"` // Empty disables publishing
	APIKey string `yaml:"api_key"`
	NodeID string `yaml:"node_id"` // Defaults to the hostname
}

// LogConfig configures logging
type LogConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // Human readable console output
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.API.Host == "" {
		c.API.Host = "0.0.0.0"
	}
	if c.API.Port == 0 {
		c.API.Port = 8047
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks for contradictory settings
func (c *Config) Validate() error {
	if c.Fixture != "" && (c.Library.Path != "" || c.Library.Static) {
		return fmt.Errorf("config: fixture cannot be combined with a scanner library")
	}
	if c.Library.Static && c.Library.Path != "" {
		return fmt.Errorf("config: library.static and library.path are mutually exclusive")
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("config: invalid api port %d", c.API.Port)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config: negative cache ttl %s", c.Cache.TTL)
	}
	return nil
}
