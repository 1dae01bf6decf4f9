// ABOUTME: Store interface and data types for nova-dashboard persistence
// ABOUTME: Defines dashboard sessions, user preferences and tab-scoped handoff records

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrExpired is returned when a handoff record exists but its TTL has passed.
var ErrExpired = errors.New("expired")

// Session is a signed-in browser session. The bearer token and user record are
// the two durable slots the dashboard needs to call the Nova backend on the
// user's behalf.
type Session struct {
	ID           string
	UserID       string
	UserJSON     string // raw user record as returned by the backend login call
	Token        string // backend bearer token
	BusinessName string
	CreatedAt    time.Time
	LastActivity time.Time
}

// Complete reports whether both durable slots are populated.
func (s *Session) Complete() bool {
	return s != nil && s.Token != "" && s.UserJSON != ""
}

// Preferences holds per-user dashboard flags that outlive sessions.
type Preferences struct {
	UserID         string
	SetupCompleted bool
	UpdatedAt      time.Time
}

// HandoffKind names a tab-scoped slot.
type HandoffKind string

const (
	HandoffSignupExchange HandoffKind = "signup_exchange" // one-time exchange token from signup
	HandoffSignupEmail    HandoffKind = "signup_email"
	HandoffDemoConfig     HandoffKind = "demo_config"
	HandoffDemoTurns      HandoffKind = "demo_turns"
)

// Handoff is a short-lived value scoped to one browser tab.
type Handoff struct {
	TabID     string
	Kind      HandoffKind
	Payload   []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore persists dashboard sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, sess *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	TouchSession(ctx context.Context, id string, at time.Time) error
	UpdateSessionBusinessName(ctx context.Context, id, businessName string) error
	DeleteSession(ctx context.Context, id string) error
	// DeleteIdleSessions removes sessions whose last activity is before the cutoff.
	DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error)
}

// PreferenceStore persists per-user flags.
type PreferenceStore interface {
	// GetPreferences returns zero-valued preferences when none are stored.
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
	SetSetupCompleted(ctx context.Context, userID string, completed bool) error
}

// HandoffStore persists tab-scoped values.
type HandoffStore interface {
	// PutHandoff inserts or replaces the value for (tab, kind).
	PutHandoff(ctx context.Context, h *Handoff) error
	// GetHandoff returns ErrNotFound or ErrExpired when no live value exists.
	GetHandoff(ctx context.Context, tabID string, kind HandoffKind) (*Handoff, error)
	// TakeHandoff reads and deletes in one step. The row is deleted even when
	// it has expired, in which case ErrExpired is returned.
	TakeHandoff(ctx context.Context, tabID string, kind HandoffKind) (*Handoff, error)
	DeleteHandoff(ctx context.Context, tabID string, kind HandoffKind) error
	DeleteExpiredHandoffs(ctx context.Context, now time.Time) (int64, error)
}

// Store is everything the dashboard persists.
type Store interface {
	SessionStore
	PreferenceStore
	HandoffStore
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MockStore)(nil)
)
