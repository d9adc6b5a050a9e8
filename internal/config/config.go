package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/factcheck/internal/client"
	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
)

// ProjectFileName is the per-directory configuration file.
const ProjectFileName = ".factcheck.yaml"

// Config represents the complete factcheck configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Backend   BackendConfig   `yaml:"backend" json:"backend"`
	Search    SearchConfig    `yaml:"search" json:"search"`
	UI        UIConfig        `yaml:"ui" json:"ui"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	LogLevel  string          `yaml:"log_level" json:"log_level"`
}

// BackendConfig configures the search backend connection.
type BackendConfig struct {
	// BaseURL is the backend root (default: http://localhost:8080).
	BaseURL string `yaml:"base_url" json:"base_url"`

	// ExpansionPath is the suggestion endpoint (default: /search/expansions).
	ExpansionPath string `yaml:"expansion_path" json:"expansion_path"`

	// Timeout bounds each request. Zero means no deadline.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// MaxRetries retries network failures and 5xx responses (default: 0).
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// CircuitBreaker fails fast after repeated backend failures (default: false).
	CircuitBreaker bool `yaml:"circuit_breaker" json:"circuit_breaker"`
}

// SearchConfig configures session behavior.
type SearchConfig struct {
	DefaultMode string `yaml:"default_mode" json:"default_mode"`
	Limit       int    `yaml:"limit" json:"limit"`
	HistorySize int    `yaml:"history_size" json:"history_size"`
}

// UIConfig configures presentation.
type UIConfig struct {
	NoColor bool `yaml:"no_color" json:"no_color"`
	// Plain forces the line renderer even on a terminal.
	Plain bool `yaml:"plain" json:"plain"`
}

// TelemetryConfig configures the local search statistics database.
type TelemetryConfig struct {
	// Disabled turns off recording and the persisted query history.
	Disabled bool `yaml:"disabled" json:"disabled"`

	// Path overrides the database location (default: ~/.factcheck/telemetry.db).
	Path string `yaml:"path" json:"path"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Backend: BackendConfig{
			BaseURL:       client.DefaultBaseURL,
			ExpansionPath: client.DefaultExpansionPath,
		},
		Search: SearchConfig{
			DefaultMode: string(client.ModeTFIDF),
			Limit:       10,
			HistorySize: 20,
		},
		LogLevel: "info",
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/factcheck/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/factcheck/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "factcheck", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "factcheck", "config.yaml")
	}
	return filepath.Join(home, ".config", "factcheck", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the given working directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/factcheck/config.yaml)
//  3. Project config (.factcheck.yaml in dir)
//  4. Environment variables (FACTCHECK_*, REACT_APP_ENDPOINT_URL)
//
// Command-line flags are applied by the caller on top of the result.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if path := filepath.Join(dir, ProjectFileName); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML reads path and merges its non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ferrors.New(ferrors.ErrCodeConfigNotFound, "failed to read config file", err).
			WithDetail("path", path)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return ferrors.ConfigError("failed to parse config file", err).
			WithDetail("path", path)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. Booleans can only be
// switched on, since every boolean default is false.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Backend.BaseURL != "" {
		c.Backend.BaseURL = other.Backend.BaseURL
	}
	if other.Backend.ExpansionPath != "" {
		c.Backend.ExpansionPath = other.Backend.ExpansionPath
	}
	if other.Backend.Timeout != 0 {
		c.Backend.Timeout = other.Backend.Timeout
	}
	if other.Backend.MaxRetries != 0 {
		c.Backend.MaxRetries = other.Backend.MaxRetries
	}
	if other.Backend.CircuitBreaker {
		c.Backend.CircuitBreaker = true
	}

	if other.Search.DefaultMode != "" {
		c.Search.DefaultMode = other.Search.DefaultMode
	}
	if other.Search.Limit != 0 {
		c.Search.Limit = other.Search.Limit
	}
	if other.Search.HistorySize != 0 {
		c.Search.HistorySize = other.Search.HistorySize
	}

	if other.UI.NoColor {
		c.UI.NoColor = true
	}
	if other.UI.Plain {
		c.UI.Plain = true
	}

	if other.Telemetry.Disabled {
		c.Telemetry.Disabled = true
	}
	if other.Telemetry.Path != "" {
		c.Telemetry.Path = other.Telemetry.Path
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies FACTCHECK_* variables. Empty values are ignored.
func (c *Config) applyEnvOverrides() error {
	// Base URL variable of the original web front end.
	if v := os.Getenv("REACT_APP_ENDPOINT_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("FACTCHECK_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("FACTCHECK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ferrors.ConfigError("FACTCHECK_TIMEOUT is not a duration", err).
				WithDetail("value", v)
		}
		c.Backend.Timeout = d
	}
	if v := os.Getenv("FACTCHECK_MODE"); v != "" {
		c.Search.DefaultMode = v
	}
	if v := os.Getenv("FACTCHECK_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ferrors.ConfigError("FACTCHECK_LIMIT is not an integer", err).
				WithDetail("value", v)
		}
		c.Search.Limit = n
	}
	if v := os.Getenv("FACTCHECK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FACTCHECK_NO_COLOR"); v != "" {
		c.UI.NoColor = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("FACTCHECK_NO_TELEMETRY"); v != "" {
		c.Telemetry.Disabled = strings.EqualFold(v, "true") || v == "1"
	}
	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ferrors.ConfigError(fmt.Sprintf("backend.base_url must be an http(s) URL, got %q", c.Backend.BaseURL), err)
	}
	if !strings.HasPrefix(c.Backend.ExpansionPath, "/") {
		return ferrors.ConfigError(fmt.Sprintf("backend.expansion_path must start with /, got %q", c.Backend.ExpansionPath), nil)
	}
	if c.Backend.Timeout < 0 {
		return ferrors.ConfigError(fmt.Sprintf("backend.timeout must be non-negative, got %s", c.Backend.Timeout), nil)
	}
	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > 10 {
		return ferrors.ConfigError(fmt.Sprintf("backend.max_retries must be between 0 and 10, got %d", c.Backend.MaxRetries), nil)
	}

	if _, err := client.ParseMode(c.Search.DefaultMode); err != nil {
		return ferrors.ConfigError("search.default_mode: "+err.Error(), nil)
	}
	if c.Search.Limit < 1 {
		return ferrors.ConfigError(fmt.Sprintf("search.limit must be positive, got %d", c.Search.Limit), nil)
	}
	if c.Search.HistorySize < 1 {
		return ferrors.ConfigError(fmt.Sprintf("search.history_size must be positive, got %d", c.Search.HistorySize), nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return ferrors.ConfigError(fmt.Sprintf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel), nil)
	}

	return nil
}

// Mode returns the validated default search mode.
func (c *Config) Mode() client.Mode {
	m, err := client.ParseMode(c.Search.DefaultMode)
	if err != nil {
		return client.ModeTFIDF
	}
	return m
}

// ClientConfig converts the backend section into a client configuration.
func (c *Config) ClientConfig() client.Config {
	cc := client.DefaultConfig()
	cc.BaseURL = c.Backend.BaseURL
	cc.ExpansionPath = c.Backend.ExpansionPath
	cc.Timeout = c.Backend.Timeout
	cc.Retry.MaxRetries = c.Backend.MaxRetries
	cc.CircuitBreaker = c.Backend.CircuitBreaker
	return cc
}

// WriteYAML writes the configuration to a YAML file, creating parent
// directories as needed.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ferrors.InternalError("failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ferrors.ConfigError("failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return ferrors.ConfigError("failed to write config file", err).WithDetail("path", path)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
