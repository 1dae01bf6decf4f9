// ABOUTME: Tests for the server orchestrator: health endpoints, run/shutdown and the reaper
// ABOUTME: Uses a temp sqlite database and an httptest stand-in for the Nova backend

package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/nova-dashboard/internal/config"
	"github.com/2389/nova-dashboard/internal/novaapi"
	"github.com/2389/nova-dashboard/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a config with a free local port and a temp database.
func testConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	return &config.Config{
		Server:   config.ServerConfig{HTTPAddr: addr},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "nova.db")},
		API: config.APIConfig{
			BaseURL:   backendURL,
			WidgetURL: "https://widget.example.com",
			Timeout:   time.Second,
		},
		Session: config.SessionConfig{
			IdleTimeout:    time.Hour,
			HandoffTTL:     time.Minute,
			VerifyGuardTTL: time.Minute,
		},
	}
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"not found"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestServerHealthEndpoints(t *testing.T) {
	cfg := testConfig(t, fakeBackend(t).URL)
	srv, err := New(cfg, testLogger())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	h := httptest.NewServer(srv.Handler())
	defer h.Close()

	resp, err := http.Get(h.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(h.URL + "/healthz/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	require.NoError(t, srv.sessions.Hydrate(context.Background()))
	resp, err = http.Get(h.URL + "/healthz/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The dashboard UI is mounted under the same router.
	resp, err = http.Get(h.URL + "/login")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerRunAndShutdown(t *testing.T) {
	cfg := testConfig(t, fakeBackend(t).URL)
	srv, err := New(cfg, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Server.HTTPAddr + "/healthz/ready")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestServerRunFailsOnBusyAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t, fakeBackend(t).URL)
	cfg.Server.HTTPAddr = ln.Addr().String()
	srv, err := New(cfg, testLogger())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	err = srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on HTTP address")
}

func TestReapLoopPurgesIdleSessions(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	s := store.NewMockStore()
	srv, err := newServer(cfg, s, novaapi.New(cfg.API.BaseURL, time.Second), testLogger())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())
	srv.reapInterval = 10 * time.Millisecond

	now := time.Now()
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, &store.Session{
		ID: "stale", UserID: "1", UserJSON: `{"id":"1"}`, Token: "t",
		CreatedAt: now.Add(-3 * time.Hour), LastActivity: now.Add(-2 * time.Hour),
	}))
	require.NoError(t, s.CreateSession(ctx, &store.Session{
		ID: "fresh", UserID: "2", UserJSON: `{"id":"2"}`, Token: "t",
		CreatedAt: now, LastActivity: now,
	}))

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		srv.reapLoop(loopCtx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.SessionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	_, err = s.GetSession(ctx, "fresh")
	assert.NoError(t, err)
}

func TestResolveTailscaleAuthKey(t *testing.T) {
	t.Setenv("TS_AUTHKEY", "")
	_, err := resolveTailscaleAuthKey("")
	assert.Error(t, err)

	key, err := resolveTailscaleAuthKey("tskey-config")
	require.NoError(t, err)
	assert.Equal(t, "tskey-config", key)

	t.Setenv("TS_AUTHKEY", "tskey-env")
	key, err = resolveTailscaleAuthKey("")
	require.NoError(t, err)
	assert.Equal(t, "tskey-env", key)
}

func TestResolveTailscaleStateDir(t *testing.T) {
	dir, err := resolveTailscaleStateDir("/var/lib/nova")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/nova", dir)

	dir, err = resolveTailscaleStateDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("nova-dashboard", "tailscale"), filepath.Join(filepath.Base(filepath.Dir(dir)), filepath.Base(dir)))
}
