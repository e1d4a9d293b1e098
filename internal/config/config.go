package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Odometer OdometerConfig `toml:"odometer"`
	Watch    WatchConfig    `toml:"watch"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// OdometerConfig selects and parameterizes the live value backend
type OdometerConfig struct {
	// Backend pins a specific backend by name. Empty probes
	// homeassistant, then static, then falls back to noop.
	Backend       string              `toml:"backend"`
	HomeAssistant HomeAssistantConfig `toml:"homeassistant"`
	// Values holds hand-entered readings for the static backend,
	// keyed by source id.
	Values map[string]float64 `toml:"values"`
}

// HomeAssistantConfig holds access settings for a Home Assistant
// instance serving live entity states
type HomeAssistantConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	// RequestsPerMinute caps state polling; zero means the default of 30.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// WatchConfig holds settings for the periodic re-evaluation service
type WatchConfig struct {
	// Schedule is a cron expression; descriptors like "@hourly" work too.
	Schedule string `toml:"schedule"`
	// MetricsAddr exposes Prometheus metrics when set, e.g. ":9190".
	// Empty disables the listener.
	MetricsAddr string `toml:"metrics_addr"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "upkeep", "upkeep.db"),
		},
		Odometer: OdometerConfig{
			HomeAssistant: HomeAssistantConfig{
				RequestsPerMinute: 30,
			},
		},
		Watch: WatchConfig{
			Schedule: "@hourly",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file from the standard location
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home dir: %w", err)
	}

	return LoadFrom(filepath.Join(homeDir, ".config", "upkeep", "config.toml"))
}

// LoadFrom reads the config file at the given path, layering it over
// the defaults. A missing file just yields the defaults.
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Allow ~ in the database path
	if cfg.Database.Path != "" {
		cfg.Database.Path = expandPath(cfg.Database.Path)
	}

	return cfg, nil
}

// expandPath expands a leading ~ to the home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save writes the configuration to the standard location
func (c *Config) Save() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("getting home dir: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "upkeep")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return c.SaveTo(filepath.Join(configDir, "config.toml"))
}

// SaveTo writes the configuration to the given path
func (c *Config) SaveTo(configPath string) error {
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
