// ABOUTME: Configuration loading and parsing for nova-dashboard
// ABOUTME: Supports YAML or TOML files with .env loading, ${VAR} expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values applied when a field is left empty.
const (
	DefaultHTTPAddr       = ":8080"
	DefaultAPITimeout     = 15 * time.Second
	DefaultIdleTimeout    = 2 * time.Hour
	DefaultHandoffTTL     = 30 * time.Minute
	DefaultVerifyGuardTTL = 10 * time.Minute
	DefaultServiceName    = "nova-dashboard"
)

// Config represents the complete nova-dashboard configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	API       APIConfig       `yaml:"api" toml:"api"`
	Session   SessionConfig   `yaml:"session" toml:"session"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Tracing   TracingConfig   `yaml:"tracing" toml:"tracing"`
}

// ServerConfig holds the dashboard's own HTTP listener settings
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
	// BaseURL is the external URL of the dashboard, used in logs and the health command.
	BaseURL       string `yaml:"base_url" toml:"base_url"`
	SecureCookies bool   `yaml:"secure_cookies" toml:"secure_cookies"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// APIConfig points at the Nova backend and the embeddable widget bundle.
type APIConfig struct {
	BaseURL   string `yaml:"base_url" toml:"base_url"`
	WidgetURL string `yaml:"widget_url" toml:"widget_url"`
	// TokenSecret verifies backend bearer tokens when set. Empty means tokens are
	// only inspected for expiry.
	TokenSecret string `yaml:"token_secret" toml:"token_secret"`

	Timeout    time.Duration `yaml:"-" toml:"-"`
	TimeoutRaw string        `yaml:"timeout" toml:"timeout"`
}

// SessionConfig holds session lifetime settings
type SessionConfig struct {
	IdleTimeout    time.Duration `yaml:"-" toml:"-"`
	HandoffTTL     time.Duration `yaml:"-" toml:"-"`
	VerifyGuardTTL time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	IdleTimeoutRaw    string `yaml:"idle_timeout" toml:"idle_timeout"`
	HandoffTTLRaw     string `yaml:"handoff_ttl" toml:"handoff_ttl"`
	VerifyGuardTTLRaw string `yaml:"verify_guard_ttl" toml:"verify_guard_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // public Funnel, implies HTTPS
	HTTPS     bool   `yaml:"https" toml:"https"`
}

// TracingConfig holds OpenTelemetry export settings
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	Endpoint    string `yaml:"endpoint" toml:"endpoint"`
	ServiceName string `yaml:"service_name" toml:"service_name"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// A .env file next to the config is loaded first; variables already set in the
// environment take precedence. Environment variables in the format ${VAR_NAME}
// are expanded. Files ending in .toml are decoded as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	loadDotEnv(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expandedData, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads .env files from the config directory and the working
// directory. Missing files are ignored.
func loadDotEnv(dir string) {
	candidates := []string{filepath.Join(dir, ".env"), ".env"}
	seen := make(map[string]bool)
	for _, p := range candidates {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		_ = godotenv.Load(abs)
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" && !c.Tailscale.Enabled {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = DefaultIdleTimeout
	}
	if c.Session.HandoffTTL == 0 {
		c.Session.HandoffTTL = DefaultHandoffTTL
	}
	if c.Session.VerifyGuardTTL == 0 {
		c.Session.VerifyGuardTTL = DefaultVerifyGuardTTL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	if c.API.WidgetURL == "" {
		return fmt.Errorf("api.widget_url is required")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Session.IdleTimeout < 0 {
		return fmt.Errorf("session.idle_timeout must be positive")
	}
	if c.Session.HandoffTTL < 0 {
		return fmt.Errorf("session.handoff_ttl must be positive")
	}
	if c.Session.VerifyGuardTTL < 0 {
		return fmt.Errorf("session.verify_guard_ttl must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not text or json", c.Logging.Format)
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"api.timeout", cfg.API.TimeoutRaw, &cfg.API.Timeout},
		{"session.idle_timeout", cfg.Session.IdleTimeoutRaw, &cfg.Session.IdleTimeout},
		{"session.handoff_ttl", cfg.Session.HandoffTTLRaw, &cfg.Session.HandoffTTL},
		{"session.verify_guard_ttl", cfg.Session.VerifyGuardTTLRaw, &cfg.Session.VerifyGuardTTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
