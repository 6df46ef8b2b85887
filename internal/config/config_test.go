// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML, TOML and JSONC loading, env var expansion, defaults and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
panel:
  server_url: "https://bot.example.com"
  path_prefix: "/panel"
  credential_header: "X-Init"
  init_data: "query_id=1"

gateway:
  timeout: "10s"
  rate_limit: 2.5
  busy_mode: "counted"

cache:
  ttl: "5m"

locale: "ru"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Panel.ServerURL != "https://bot.example.com" {
		t.Errorf("Panel.ServerURL = %q, want %q", cfg.Panel.ServerURL, "https://bot.example.com")
	}
	if cfg.Panel.CredentialHeader != "X-Init" {
		t.Errorf("Panel.CredentialHeader = %q, want %q", cfg.Panel.CredentialHeader, "X-Init")
	}
	if cfg.Gateway.Timeout != 10*time.Second {
		t.Errorf("Gateway.Timeout = %v, want %v", cfg.Gateway.Timeout, 10*time.Second)
	}
	assert.Equal(t, 2.5, cfg.Gateway.RateLimit)
	assert.Equal(t, "counted", cfg.Gateway.BusyMode)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "ru", cfg.Locale)
	assert.Equal(t, LoggingConfig{Level: "debug", Format: "json"}, cfg.Logging)
}

func TestLoad_DefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
panel:
  server_url: "http://localhost:8000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/panel", cfg.Panel.PathPrefix)
	assert.Equal(t, "X-Telegram-Init-Data", cfg.Panel.CredentialHeader)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "flag", cfg.Gateway.BusyMode)
	assert.Zero(t, cfg.Cache.TTL)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_PANEL_INIT_DATA", "query_id=abc&hash=def")
	t.Setenv("TEST_PANEL_URL", "https://panel.example.org")

	path := writeConfig(t, "config.yaml", `
panel:
  server_url: "${TEST_PANEL_URL}"
  init_data: "${TEST_PANEL_INIT_DATA}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	if cfg.Panel.InitData != "query_id=abc&hash=def" {
		t.Errorf("Panel.InitData = %q, want expanded value", cfg.Panel.InitData)
	}
	assert.Equal(t, "https://panel.example.org", cfg.Panel.ServerURL)
}

func TestLoad_EnvVarNotSet(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
panel:
  init_data: "${TEST_PANEL_DEFINITELY_NOT_SET}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Panel.InitData, "unset variables expand to empty")
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
locale = "ru"

[panel]
server_url = "https://bot.example.com"
path_prefix = "/p"

[gateway]
timeout = "3s"
rate_limit = 1.5
busy_mode = "counted"

[cache]
ttl = "1m"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/p", cfg.Panel.PathPrefix)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 1.5, cfg.Gateway.RateLimit)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "ru", cfg.Locale)
	assert.Equal(t, "X-Telegram-Init-Data", cfg.Panel.CredentialHeader, "default kept")
}

func TestLoad_JSONC(t *testing.T) {
	path := writeConfig(t, "config.jsonc", `{
  // where the panel lives
  "panel": {
    "server_url": "https://bot.example.com",
    "path_prefix": "/panel", /* deployment prefix */
  },
  "gateway": {"timeout": "15s", "busy_mode": "flag"},
  "logging": {"level": "warn"},
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.com", cfg.Panel.ServerURL)
	assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.ini", "x=1")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for nonexistent file, got nil")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("error = %v, want reading error", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", "panel: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_InvalidDuration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad timeout", "gateway:\n  timeout: \"soon\"\n", "parsing timeout"},
		{"zero timeout", "gateway:\n  timeout: \"0s\"\n", "timeout must be positive"},
		{"bad ttl", "cache:\n  ttl: \"forever\"\n", "parsing ttl"},
		{"negative ttl", "cache:\n  ttl: \"-1m\"\n", "ttl must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"no server url is allowed", func(c *Config) { c.Panel.ServerURL = "" }, ""},
		{"server url without scheme", func(c *Config) { c.Panel.ServerURL = "bot.example.com" }, "panel.server_url"},
		{"ftp server url", func(c *Config) { c.Panel.ServerURL = "ftp://bot.example.com" }, "panel.server_url"},
		{"relative prefix", func(c *Config) { c.Panel.PathPrefix = "panel" }, "panel.path_prefix"},
		{"negative rate", func(c *Config) { c.Gateway.RateLimit = -1 }, "gateway.rate_limit"},
		{"bad busy mode", func(c *Config) { c.Gateway.BusyMode = "spinner" }, "gateway.busy_mode"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Panel.ServerURL = "https://bot.example.com"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_EXPAND_A", "alpha")

	got := expandEnvVars("a=${TEST_EXPAND_A} b=${TEST_EXPAND_MISSING} c=$TEST_EXPAND_A")
	assert.Equal(t, "a=alpha b= c=$TEST_EXPAND_A", got)
}
