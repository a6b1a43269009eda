package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	BackendSystem = "system"
	BackendMemory = "memory"
)

// Config represents the crayond configuration
type Config struct {
	API      APIConfig      `yaml:"api"`
	Registry RegistryConfig `yaml:"registry"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// APIConfig holds the HTTP API settings
type APIConfig struct {
	// Listen is "0.0.0.0", an IP address, or an interface name
	Listen string `yaml:"listen,omitempty"`
	Port   int    `yaml:"port,omitempty"`

	// LogRequests logs every API request (hot reloadable)
	LogRequests bool `yaml:"log_requests,omitempty"`
}

// RegistryConfig selects the interface registry backend
type RegistryConfig struct {
	// Backend: system, memory
	Backend string `yaml:"backend,omitempty"`

	// Subnet the memory backend allocates addresses from.
	// Empty means every link gets 127.0.0.1/255.0.0.0.
	Subnet string `yaml:"subnet,omitempty"`
}

// ServerConfig holds local control socket settings
type ServerConfig struct {
	SocketPath string `yaml:"socket_path,omitempty"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level: info, debug
	Level string `yaml:"level,omitempty"`

	// Verbose enables verbose logging (hot reloadable)
	Verbose bool `yaml:"verbose,omitempty"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadFromFile loads configuration from a YAML file. A missing file yields
// the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	cfg.setDefaults()

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for unspecified fields
func (c *Config) setDefaults() {
	if c.API.Listen == "" {
		c.API.Listen = "0.0.0.0"
	}
	if c.API.Port == 0 {
		c.API.Port = 8000
	}
	if c.Registry.Backend == "" {
		c.Registry.Backend = BackendSystem
	}
	if c.Server.SocketPath == "" {
		c.Server.SocketPath = getDefaultSocketPath()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port %d", c.API.Port)
	}

	switch c.Registry.Backend {
	case BackendSystem:
		if c.Registry.Subnet != "" {
			return fmt.Errorf("registry subnet is only supported by the %s backend", BackendMemory)
		}
	case BackendMemory:
		if c.Registry.Subnet != "" {
			_, ipnet, err := net.ParseCIDR(c.Registry.Subnet)
			if err != nil {
				return fmt.Errorf("invalid registry subnet: %w", err)
			}
			if ipnet.IP.To4() == nil {
				return fmt.Errorf("invalid registry subnet %s: must be IPv4", c.Registry.Subnet)
			}
		}
	default:
		return fmt.Errorf("invalid registry backend: %s (must be one of: %s, %s)", c.Registry.Backend, BackendSystem, BackendMemory)
	}

	validLevels := map[string]bool{"info": true, "debug": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: info, debug)", c.Logging.Level)
	}

	return nil
}

// Verbosity returns the logr verbosity implied by the logging settings
func (c *Config) Verbosity() int {
	if c.Logging.Verbose || c.Logging.Level == "debug" {
		return 1
	}
	return 0
}
