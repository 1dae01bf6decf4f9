// Package config handles configuration loading for nova-dashboard.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path given with --config
//  2. Path from NOVA_DASHBOARD_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/nova-dashboard/config.yaml
//
// Files ending in .toml are decoded as TOML; anything else is YAML.
//
// # Environment
//
// A .env file beside the config file (and one in the working directory) is
// loaded before parsing. Values already present in the environment win.
// Configuration values can then reference environment variables:
//
//	api:
//	  token_secret: "${NOVA_TOKEN_SECRET}"
//
// # Durations
//
// Duration values use time.ParseDuration syntax:
//
//	session:
//	  idle_timeout: "2h"
//	  handoff_ttl: "30m"
//
// # Sections
//
//	server:
//	  http_addr: ":8080"
//	  secure_cookies: true
//	database:
//	  path: "~/.local/share/nova-dashboard/dashboard.db"
//	api:
//	  base_url: "https://api.nova.example"
//	  widget_url: "https://widget.nova.example"
//	  timeout: "15s"
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text or json
//	tailscale:
//	  enabled: false
//	  hostname: "nova"
//	tracing:
//	  enabled: false
//	  endpoint: "http://localhost:4318"
package config
