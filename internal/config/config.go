// ABOUTME: Configuration loading and parsing for the panel client
// ABOUTME: Supports YAML, TOML and JSONC files with environment variable expansion and duration parsing

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config represents the complete panel client configuration
type Config struct {
	Panel   PanelConfig   `yaml:"panel" toml:"panel" json:"panel"`
	Gateway GatewayConfig `yaml:"gateway" toml:"gateway" json:"gateway"`
	Cache   CacheConfig   `yaml:"cache" toml:"cache" json:"cache"`
	Locale  string        `yaml:"locale" toml:"locale" json:"locale"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
}

// PanelConfig locates the panel and carries the session credential
type PanelConfig struct {
	ServerURL        string `yaml:"server_url" toml:"server_url" json:"server_url"`
	PathPrefix       string `yaml:"path_prefix" toml:"path_prefix" json:"path_prefix"`
	CredentialHeader string `yaml:"credential_header" toml:"credential_header" json:"credential_header"`
	// InitData is normally "${PANEL_INIT_DATA}" so the credential stays out of the file
	InitData string `yaml:"init_data" toml:"init_data" json:"init_data"`
}

// GatewayConfig holds request gateway tuning
type GatewayConfig struct {
	Timeout time.Duration `yaml:"-" toml:"-" json:"-"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout" json:"timeout"`

	// RateLimit caps requests per second; 0 disables throttling
	RateLimit float64 `yaml:"rate_limit" toml:"rate_limit" json:"rate_limit"`
	// BusyMode is "flag" (plain boolean) or "counted"
	BusyMode string `yaml:"busy_mode" toml:"busy_mode" json:"busy_mode"`
}

// CacheConfig holds snapshot cache configuration
type CacheConfig struct {
	TTL time.Duration `yaml:"-" toml:"-" json:"-"`

	// Raw string value; empty or "0" keeps snapshots for the whole session
	TTLRaw string `yaml:"ttl" toml:"ttl" json:"ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Format string `yaml:"format" toml:"format" json:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Panel: PanelConfig{
			PathPrefix:       "/panel",
			CredentialHeader: "X-Telegram-Init-Data",
		},
		Gateway: GatewayConfig{
			Timeout:    30 * time.Second,
			TimeoutRaw: "30s",
			BusyMode:   "flag",
		},
		Locale: "en",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// The format is chosen by extension: .yaml/.yml, .toml, or .json/.jsonc.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
// Keys missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := []byte(expandEnvVars(string(data)))

	cfg := Default()
	if err := decode(path, expanded, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate field values
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", "":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that configured values are well-formed.
// A missing server URL or credential is not an error here: the gateway
// reports those to the user on every call.
func (c *Config) Validate() error {
	if c.Panel.ServerURL != "" {
		u, err := url.Parse(c.Panel.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("panel.server_url must be an http(s) URL, got %q", c.Panel.ServerURL)
		}
	}

	if c.Panel.PathPrefix != "" && !strings.HasPrefix(c.Panel.PathPrefix, "/") {
		return fmt.Errorf("panel.path_prefix must start with /, got %q", c.Panel.PathPrefix)
	}

	if c.Gateway.RateLimit < 0 {
		return fmt.Errorf("gateway.rate_limit must not be negative")
	}

	switch c.Gateway.BusyMode {
	case "", "flag", "counted":
	default:
		return fmt.Errorf("gateway.busy_mode must be flag or counted, got %q", c.Gateway.BusyMode)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Gateway.TimeoutRaw != "" {
		cfg.Gateway.Timeout, err = time.ParseDuration(cfg.Gateway.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.Gateway.TimeoutRaw, err)
		}
		if cfg.Gateway.Timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %q", cfg.Gateway.TimeoutRaw)
		}
	}

	if cfg.Cache.TTLRaw != "" {
		cfg.Cache.TTL, err = time.ParseDuration(cfg.Cache.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing ttl %q: %w", cfg.Cache.TTLRaw, err)
		}
		if cfg.Cache.TTL < 0 {
			return fmt.Errorf("ttl must not be negative, got %q", cfg.Cache.TTLRaw)
		}
	}

	return nil
}
