// Package config handles configuration loading for the panel client.
//
// # Overview
//
// Configuration is loaded from YAML, TOML or JSONC files with environment
// variable expansion. Keys missing from the file keep the values from
// Default().
//
// # Configuration File
//
// Default locations used by panelctl (in order):
//
//  1. Path from the --config flag
//  2. Path from PANEL_CONFIG environment variable
//  3. ~/.config/panel/config.yaml (or config.toml, config.jsonc)
//
// The format is chosen by file extension: .yaml/.yml, .toml, .json/.jsonc.
// JSONC files may contain comments and trailing commas.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	panel:
//	  init_data: "${PANEL_INIT_DATA}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Panel location and credential:
//
//	panel:
//	  server_url: "https://bot.example.com"
//	  path_prefix: "/panel"   # "/" when the panel is mounted at the root
//	  credential_header: "X-Telegram-Init-Data"
//	  init_data: "${PANEL_INIT_DATA}"
//
// Request gateway:
//
//	gateway:
//	  timeout: "30s"
//	  rate_limit: 5        # requests per second, 0 = unlimited
//	  busy_mode: "flag"    # flag, counted
//
// Snapshot cache:
//
//	cache:
//	  ttl: "0"             # 0 = keep for the whole session
//
// Notices and logging:
//
//	locale: "ru"           # en, ru
//	logging:
//	  level: "info"        # debug, info, warn, error
//	  format: "text"       # text, json
//
// # Validation
//
// Load() validates URL and prefix shape, duration formats, busy mode and
// logging values. A missing server URL or credential is accepted: the request
// gateway reports those to the user on every call.
package config
