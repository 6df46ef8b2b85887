// ABOUTME: Tests for panelctl helpers: config and credential lookup, id parsing, selection edits
// ABOUTME: Also checks the stderr log handler filters by level and prints attributes

package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/delegate-panel/internal/config"
	"github.com/2389/delegate-panel/internal/delegation"
	"github.com/2389/delegate-panel/internal/roster"
)

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("PANEL_CONFIG", "")

	assert.Equal(t, "explicit.yaml", resolveConfigPath("explicit.yaml"))
	assert.Empty(t, resolveConfigPath(""), "no file present")

	path := filepath.Join(dir, "panel", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("locale = \"ru\"\n"), 0o600))
	assert.Equal(t, path, resolveConfigPath(""))

	t.Setenv("PANEL_CONFIG", "/etc/panel.jsonc")
	assert.Equal(t, "/etc/panel.jsonc", resolveConfigPath(""))
}

func TestGetInitData_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("PANEL_INIT_DATA", "")

	cfg := config.Default()
	assert.Empty(t, getInitData(cfg))

	file := filepath.Join(dir, "panel", "init-data")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte("from-file\n"), 0o600))
	assert.Equal(t, "from-file", getInitData(cfg))

	cfg.Panel.InitData = "from-config"
	assert.Equal(t, "from-config", getInitData(cfg))

	t.Setenv("PANEL_INIT_DATA", "from-env")
	assert.Equal(t, "from-env", getInitData(cfg))
}

func TestParseAccountIDs(t *testing.T) {
	ids, err := parseAccountIDs("3, 1,,2")
	require.NoError(t, err)
	assert.Equal(t, []roster.AccountID{3, 1, 2}, ids)

	ids, err = parseAccountIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseAccountIDs("1,abc")
	assert.Error(t, err)
	_, err = parseAccountIDs("-4")
	assert.Error(t, err)
}

func TestToggleIDs(t *testing.T) {
	accounts := []roster.Account{{ID: 1}, {ID: 2}, {ID: 3}}
	sel := delegation.Selection{Checked: delegation.NewIDSet(1)}

	require.NoError(t, toggleIDs(&sel, "1,2", accounts, true))
	assert.Equal(t, []roster.AccountID{1, 2}, sel.Checked.Sorted(), "already-checked ids stay checked")

	require.NoError(t, toggleIDs(&sel, "1,3", accounts, false))
	assert.Equal(t, []roster.AccountID{2}, sel.Checked.Sorted())

	err := toggleIDs(&sel, "9", accounts, true)
	assert.ErrorIs(t, err, roster.ErrUnknownAccount)
}

func TestGrantAllCollapsesToAll(t *testing.T) {
	accounts := []roster.Account{{ID: 1}, {ID: 2}}
	sel := delegation.Selection{Checked: delegation.NewIDSet(roster.IDs(accounts)...)}
	assert.True(t, sel.Scope(accounts).Accounts.IsAll())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "Привет, м…", truncate("Привет, мир", 10))
}

func TestColorHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &colorHandler{mu: &sync.Mutex{}, out: &buf, level: slog.LevelInfo}
	logger := slog.New(h).With("component", "gateway")

	logger.Debug("hidden")
	logger.Info("call", "endpoint", "/api/tariffs")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "call")
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "/api/tariffs")
}

func TestNewLogger_LevelNames(t *testing.T) {
	tests := []struct {
		level     string
		wantInfo  bool
		wantWarn  bool
		wantError bool
	}{
		{"debug", true, true, true},
		{"INFO", true, true, true},
		{"warn", false, true, true},
		{"warning", false, true, true},
		{"WARN", false, true, true},
		{"Error", false, false, true},
		{"", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			for _, format := range []string{"text", "json"} {
				var buf bytes.Buffer
				logger := newLogger(config.LoggingConfig{Level: tt.level, Format: format}, &buf)

				logger.Info("info-line")
				logger.Warn("warn-line")
				logger.Error("error-line")

				out := buf.String()
				assert.Equal(t, tt.wantInfo, strings.Contains(out, "info-line"), "%s info", format)
				assert.Equal(t, tt.wantWarn, strings.Contains(out, "warn-line"), "%s warn", format)
				assert.Equal(t, tt.wantError, strings.Contains(out, "error-line"), "%s error", format)
			}
		})
	}
}
