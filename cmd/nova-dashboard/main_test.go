// ABOUTME: Tests for config path resolution, health URL building and the log handler
// ABOUTME: Runs without a server; the colour handler writes into a buffer

package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/2389/nova-dashboard/internal/config"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("NOVA_DASHBOARD_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	assert.Equal(t, "/etc/nova.yaml", getConfigPath([]string{"--config", "/etc/nova.yaml"}))
	assert.Equal(t, "/etc/nova.toml", getConfigPath([]string{"--config=/etc/nova.toml"}))
	assert.Equal(t, filepath.Join("/tmp/xdg", "nova-dashboard", "config.yaml"), getConfigPath(nil))

	t.Setenv("NOVA_DASHBOARD_CONFIG", "/env/nova.yaml")
	assert.Equal(t, "/env/nova.yaml", getConfigPath(nil))
	assert.Equal(t, "/flag.yaml", getConfigPath([]string{"-c", "/flag.yaml"}))
}

func TestHealthURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServerConfig
		want string
	}{
		{"port only", config.ServerConfig{HTTPAddr: ":8080"}, "http://localhost:8080/healthz"},
		{"host and port", config.ServerConfig{HTTPAddr: "127.0.0.1:9000"}, "http://127.0.0.1:9000/healthz"},
		{"base url wins", config.ServerConfig{HTTPAddr: ":8080", BaseURL: "https://nova.example.com/"}, "https://nova.example.com/healthz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, healthURL(&config.Config{Server: tt.cfg}))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestColorHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggingConfig{Level: "info", Format: "text"})

	logger.Debug("hidden")
	logger.With("component", "session").WithGroup("req").Info("session started", "user_id", "7")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INF session started")
	assert.Contains(t, out, "component=session")
	assert.Contains(t, out, "req.user_id=7")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggingConfig{Level: "warn", Format: "json"})

	logger.Info("quiet")
	logger.Warn("loud", "n", 1)

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), `"msg":"loud"`)
}
