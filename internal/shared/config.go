package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	SourceEmbedded = "embedded"
	SourceDatabase = "database"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Stands   StandsConfig   `toml:"stands"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// StandsConfig selects where the reference table is read from.
type StandsConfig struct {
	Source  string `toml:"source"`
	Dataset string `toml:"dataset"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string   `toml:"host"`
	Port              int      `toml:"port"`
	AllowedOrigins    []string `toml:"allowed_origins"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings that have a closed set of values.
func (c *Config) Validate() error {
	switch c.Stands.Source {
	case SourceEmbedded, SourceDatabase:
	default:
		return fmt.Errorf("%w: stands.source must be %q or %q, got %q", ErrInvalidConfig, SourceEmbedded, SourceDatabase, c.Stands.Source)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.RequestsPerSecond < 0 || c.Server.Burst < 0 {
		return fmt.Errorf("%w: server rate limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// LoadOrDefault loads the config at path when it exists and falls back to [DefaultConfig] otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	return LoadConfig(path)
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidConfig)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
