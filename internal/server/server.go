// ABOUTME: Server orchestrator that builds every component and serves the dashboard
// ABOUTME: Manages the listener (TCP or tsnet), session reaping, health endpoints and shutdown

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/authflow"
	"github.com/2389/nova-dashboard/internal/config"
	"github.com/2389/nova-dashboard/internal/dashboard"
	"github.com/2389/nova-dashboard/internal/dedupe"
	"github.com/2389/nova-dashboard/internal/demo"
	"github.com/2389/nova-dashboard/internal/guide"
	"github.com/2389/nova-dashboard/internal/novaapi"
	"github.com/2389/nova-dashboard/internal/onboarding"
	"github.com/2389/nova-dashboard/internal/session"
	"github.com/2389/nova-dashboard/internal/store"
	"github.com/2389/nova-dashboard/internal/webui"
	"github.com/2389/nova-dashboard/internal/widget"
)

// DefaultReapInterval is how often idle sessions and expired handoffs are
// purged from the store.
const DefaultReapInterval = 5 * time.Minute

// verifyGuardSize bounds the number of remembered verification tokens.
const verifyGuardSize = 10_000

// Server orchestrates the dashboard components.
type Server struct {
	config      *config.Config
	store       store.Store
	sessions    *session.Manager
	guard       *dedupe.Guard
	events      *widget.Broadcaster
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger

	// reapInterval is the period of the session reaper loop.
	reapInterval time.Duration

	// background tracks the reaper goroutine
	background sync.WaitGroup
}

// initStore opens the sqlite store. NOVA_DB_PATH overrides the configured path.
func initStore(cfg *config.Config) (*store.SQLiteStore, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("NOVA_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New builds the store, backend client, session manager and UI from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}
	api := novaapi.New(cfg.API.BaseURL, cfg.API.Timeout, novaapi.WithLogger(logger))
	return newServer(cfg, s, api, logger)
}

// Backend is every Nova API call the dashboard makes.
type Backend interface {
	webui.Backend
	session.API
	authflow.VerifyAPI
}

// newServer wires components around an open store and a backend.
func newServer(cfg *config.Config, s store.Store, backend Backend, logger *slog.Logger) (*Server, error) {
	sessions := session.NewManager(s, backend, auth.NewTokenInspector([]byte(cfg.API.TokenSecret)), session.Config{
		IdleTimeout: cfg.Session.IdleTimeout,
		HandoffTTL:  cfg.Session.HandoffTTL,
		Logger:      logger,
	})
	guard := dedupe.New(cfg.Session.VerifyGuardTTL, verifyGuardSize)
	events := widget.NewBroadcaster(logger)

	ui, err := webui.New(webui.Config{
		APIURL:        cfg.API.BaseURL,
		WidgetURL:     cfg.API.WidgetURL,
		SecureCookies: cfg.Server.SecureCookies,
	}, webui.Deps{
		Backend:  backend,
		Sessions: sessions,
		Verifier: authflow.NewVerifier(backend, sessions, s, guard, logger),
		Gate:     dashboard.NewGate(backend, logger),
		Drafts:   onboarding.NewDrafts(),
		Sandbox:  demo.NewSandbox(s, cfg.Session.HandoffTTL, cfg.API.WidgetURL, logger),
		Events:   events,
		Setup:    guide.NewSetup(s),
	}, logger)
	if err != nil {
		sessions.Stop()
		guard.Close()
		events.Close()
		_ = s.Close()
		return nil, fmt.Errorf("creating web UI: %w", err)
	}

	srv := &Server{
		config:       cfg,
		store:        s,
		sessions:     sessions,
		guard:        guard,
		events:       events,
		logger:       logger.With("component", "server"),
		reapInterval: DefaultReapInterval,
	}

	r := chi.NewRouter()
	// Health endpoints - no session required
	r.Get("/healthz", srv.handleHealth)
	r.Get("/healthz/ready", srv.handleReady)
	r.Mount("/", ui.Handler())

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) setupTCPListener() (net.Listener, error) {
	s.logger.Info("starting dashboard", "http_addr", s.config.Server.HTTPAddr)

	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupListener creates the listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled", "http_addr", s.config.Server.HTTPAddr)
		}
		return s.setupTailscaleListener(ctx)
	}
	return s.setupTCPListener()
}

// Run hydrates persisted sessions, serves until ctx is canceled, then shuts
// down. It returns nil on a graceful shutdown and the server error otherwise.
func (s *Server) Run(ctx context.Context) error {
	if err := s.sessions.Hydrate(ctx); err != nil {
		s.logger.Warn("session hydration incomplete", "error", err)
	}

	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	reapCtx, stopReaper := context.WithCancel(ctx)
	s.background.Go(func() { s.reapLoop(reapCtx) })

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	stopReaper()
	s.background.Wait()

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// reapLoop purges idle sessions and expired handoffs until ctx ends.
func (s *Server) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(s.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.sessions.Reap(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("session reap failed", "error", err)
			}
		}
	}
}

// gracefulShutdown uses a fresh context since the caller's is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "nova-dashboard", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListener starts a tsnet node and listens on it.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	s.logTailscaleStatus(tsCfg.Hostname, status)

	return s.createTailscaleListener(tsCfg)
}

func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// createTailscaleListener picks Funnel, tailnet HTTPS or plain tailnet HTTP.
func (s *Server) createTailscaleListener(tsCfg config.TailscaleConfig) (net.Listener, error) {
	switch {
	case tsCfg.Funnel:
		s.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := s.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel: %w", err)
		}
		return ln, nil
	case tsCfg.HTTPS:
		return s.createTailscaleTLSListener()
	default:
		ln, err := s.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

// createTailscaleTLSListener serves HTTPS with Tailscale's provisioned certs.
func (s *Server) createTailscaleTLSListener() (net.Listener, error) {
	s.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := s.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := s.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}

func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server and releases every component. Sessions stay
// persisted; their idle timers are re-armed on the next request after restart.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down dashboard")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))

	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}

	s.sessions.Stop()
	s.events.Close()
	s.guard.Close()
	errs = appendCloseError(errs, "store close", s.store.Close())

	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once persisted sessions have been hydrated.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("hydrating sessions"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d active sessions)", s.sessions.ActiveTimers())
}
