// ABOUTME: Session lifecycle: login, signup handoff, logout, activity tracking and idle expiry
// ABOUTME: Keeps the backend bearer token server-side behind an opaque session id

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/novaapi"
	"github.com/2389/nova-dashboard/internal/store"
)

// User-visible fallback messages.
const (
	MsgLoginFailed   = "Login failed"
	MsgSignupFailed  = "Signup failed"
	MsgTryAgain      = "Something went wrong. Please try again."
	DefaultIdleLimit = 2 * time.Hour
)

// API is the subset of the backend facade the session manager calls.
type API interface {
	Login(ctx context.Context, email, password string) (*novaapi.LoginResult, error)
	Signup(ctx context.Context, email, password, businessName string) (*novaapi.SignupResult, error)
	RedeemExchange(ctx context.Context, exchangeToken string) (*novaapi.LoginResult, error)
}

// Result reports the outcome of login or signup to the page.
type Result struct {
	Success bool
	Error   string
}

// Config holds Manager settings.
type Config struct {
	IdleTimeout time.Duration
	HandoffTTL  time.Duration
	Clock       Clock
	Logger      *slog.Logger
}

// Manager owns every signed-in session. It is injected into handlers and
// has an explicit start (Hydrate) and stop (Stop).
type Manager struct {
	store       store.Store
	api         API
	tokens      *auth.TokenInspector
	clock       Clock
	idleTimeout time.Duration
	handoffTTL  time.Duration
	logger      *slog.Logger

	mu       sync.Mutex
	timers   map[string]*IdleTimer
	onLogout []func(sessionID string)

	ready atomic.Bool
}

// NewManager creates a session manager.
func NewManager(s store.Store, api API, tokens *auth.TokenInspector, cfg Config) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleLimit
	}
	if cfg.HandoffTTL <= 0 {
		cfg.HandoffTTL = 30 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		store:       s,
		api:         api,
		tokens:      tokens,
		clock:       cfg.Clock,
		idleTimeout: cfg.IdleTimeout,
		handoffTTL:  cfg.HandoffTTL,
		logger:      cfg.Logger.With("component", "session"),
		timers:      make(map[string]*IdleTimer),
	}
}

// OnLogout registers a callback run after a session ends, whether by
// explicit logout or idle expiry.
func (m *Manager) OnLogout(fn func(sessionID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// Hydrate prepares persisted state at startup: sessions idle past the
// timeout and expired handoffs are removed. Surviving sessions re-arm their
// idle timers on their next request.
func (m *Manager) Hydrate(ctx context.Context) error {
	defer m.ready.Store(true)
	if err := m.Reap(ctx); err != nil {
		return fmt.Errorf("hydrating sessions: %w", err)
	}
	return nil
}

// Ready reports whether Hydrate has finished.
func (m *Manager) Ready() bool {
	return m.ready.Load()
}

// Reap deletes idle sessions and expired handoffs.
func (m *Manager) Reap(ctx context.Context) error {
	now := m.clock.Now()
	if _, err := m.store.DeleteIdleSessions(ctx, now.Add(-m.idleTimeout)); err != nil {
		return err
	}
	if _, err := m.store.DeleteExpiredHandoffs(ctx, now); err != nil {
		return err
	}
	return nil
}

// Login posts credentials and, on success, creates a session.
func (m *Manager) Login(ctx context.Context, email, password string) (Result, *auth.Identity) {
	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.logger.Info("login rejected", "kind", novaapi.KindOf(err), "error", err)
		return Result{Error: novaapi.MessageOf(err, MsgLoginFailed)}, nil
	}

	id, err := m.establish(ctx, res)
	if err != nil {
		m.logger.Error("failed to establish session", "error", err)
		return Result{Error: MsgLoginFailed}, nil
	}
	return Result{Success: true}, id
}

// Signup creates the account. On success the signup email, and the
// exchange token when the backend issued one, are staged for tabID so the
// verification page can resend or sign in without the password.
func (m *Manager) Signup(ctx context.Context, tabID, email, password, businessName string) Result {
	res, err := m.api.Signup(ctx, email, password, businessName)
	if err != nil {
		if novaapi.IsTransport(err) {
			m.logger.Warn("signup failed", "error", err)
			return Result{Error: MsgTryAgain}
		}
		return Result{Error: novaapi.MessageOf(err, MsgSignupFailed)}
	}

	if tabID != "" {
		if err := m.putHandoff(ctx, tabID, store.HandoffSignupEmail, email); err != nil {
			m.logger.Error("failed to stage signup email", "error", err)
		}
		if res.ExchangeToken != "" {
			if err := m.putHandoff(ctx, tabID, store.HandoffSignupExchange, res.ExchangeToken); err != nil {
				m.logger.Error("failed to stage exchange token", "error", err)
			}
		}
	}
	return Result{Success: true}
}

// Redeem trades a signup exchange token for a session.
func (m *Manager) Redeem(ctx context.Context, exchangeToken string) (*auth.Identity, error) {
	res, err := m.api.RedeemExchange(ctx, exchangeToken)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, res)
}

func (m *Manager) establish(ctx context.Context, res *novaapi.LoginResult) (*auth.Identity, error) {
	if _, err := m.tokens.Inspect(res.Token); err != nil {
		return nil, fmt.Errorf("inspecting token: %w", err)
	}

	userJSON := string(res.RawUser)
	if userJSON == "" || userJSON == "null" {
		b, err := json.Marshal(res.User)
		if err != nil {
			return nil, fmt.Errorf("encoding user: %w", err)
		}
		userJSON = string(b)
	}

	now := m.clock.Now()
	sess := &store.Session{
		ID:           uuid.NewString(),
		UserID:       string(res.User.ID),
		UserJSON:     userJSON,
		Token:        res.Token,
		BusinessName: res.User.BusinessName,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	m.arm(sess.ID)

	m.logger.Info("session started", "user_id", sess.UserID)
	return identityFor(sess, &res.User), nil
}

// Authenticate resolves a session id, counting the call as activity.
// Sessions missing either durable slot, or idle past the timeout, are ended.
func (m *Manager) Authenticate(ctx context.Context, sessionID string) (*auth.Identity, error) {
	sess, err := m.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if !sess.Complete() {
		m.Logout(ctx, sessionID)
		return nil, auth.ErrNoSession
	}

	now := m.clock.Now()
	if now.Sub(sess.LastActivity) >= m.idleTimeout {
		m.logger.Info("session idle past timeout", "user_id", sess.UserID)
		m.Logout(ctx, sessionID)
		return nil, auth.ErrNoSession
	}

	// Touch and arm together so a concurrent Logout cannot leave a timer
	// behind for a deleted row.
	m.mu.Lock()
	err = m.store.TouchSession(ctx, sessionID, now)
	if err == nil {
		m.armLocked(sessionID)
	} else if errors.Is(err, store.ErrNotFound) {
		m.disarmLocked(sessionID)
	}
	m.mu.Unlock()
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var user novaapi.User
	if err := json.Unmarshal([]byte(sess.UserJSON), &user); err != nil {
		m.logger.Warn("stored user record is not valid JSON", "error", err)
	}
	return identityFor(sess, &user), nil
}

// Logout ends a session. It always succeeds from the caller's point of view.
func (m *Manager) Logout(ctx context.Context, sessionID string) {
	m.mu.Lock()
	m.disarmLocked(sessionID)
	err := m.store.DeleteSession(ctx, sessionID)
	hooks := append([]func(string){}, m.onLogout...)
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("failed to delete session", "error", err)
	}
	for _, fn := range hooks {
		fn(sessionID)
	}
}

// SetBusinessName updates the name shown in the shell after a profile save.
func (m *Manager) SetBusinessName(ctx context.Context, sessionID, name string) error {
	return m.store.UpdateSessionBusinessName(ctx, sessionID, name)
}

// Stop cancels every idle timer. Sessions stay persisted.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}

// arm resets the session's idle timer, creating it on first use.
func (m *Manager) arm(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armLocked(sessionID)
}

func (m *Manager) armLocked(sessionID string) {
	if t, ok := m.timers[sessionID]; ok {
		t.Reset()
		return
	}
	m.timers[sessionID] = NewIdleTimer(m.clock, m.idleTimeout, func() {
		m.logger.Info("session expired after inactivity")
		m.Logout(context.Background(), sessionID)
	})
}

func (m *Manager) disarmLocked(sessionID string) {
	if t, ok := m.timers[sessionID]; ok {
		t.Stop()
		delete(m.timers, sessionID)
	}
}

// ActiveTimers returns how many sessions have an armed idle timer.
func (m *Manager) ActiveTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manager) putHandoff(ctx context.Context, tabID string, kind store.HandoffKind, value string) error {
	now := m.clock.Now()
	return m.store.PutHandoff(ctx, &store.Handoff{
		TabID:     tabID,
		Kind:      kind,
		Payload:   []byte(value),
		CreatedAt: now,
		ExpiresAt: now.Add(m.handoffTTL),
	})
}

func identityFor(sess *store.Session, user *novaapi.User) *auth.Identity {
	businessName := sess.BusinessName
	if businessName == "" {
		businessName = user.BusinessName
	}
	userID := sess.UserID
	if userID == "" {
		userID = string(user.ID)
	}
	return &auth.Identity{
		SessionID:    sess.ID,
		UserID:       userID,
		Email:        user.Email,
		BusinessName: businessName,
		Token:        sess.Token,
	}
}
