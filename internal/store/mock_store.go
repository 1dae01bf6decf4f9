// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows handler and session tests to run without SQLite

package store

import (
	"context"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session     // keyed by session ID
	prefs    map[string]*Preferences // keyed by user ID
	handoffs map[string]*Handoff     // keyed by "tabID:kind"

	// Now overrides the clock used for handoff expiry. Nil means time.Now.
	Now func() time.Time
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[string]*Session),
		prefs:    make(map[string]*Preferences),
		handoffs: make(map[string]*Handoff),
	}
}

func (m *MockStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func handoffKey(tabID string, kind HandoffKind) string {
	return tabID + ":" + string(kind)
}

// CreateSession stores a copy of the session.
func (m *MockStore) CreateSession(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := *sess
	m.sessions[s.ID] = &s
	return nil
}

// GetSession returns a copy of the session or ErrNotFound.
func (m *MockStore) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *s
	return &c, nil
}

// TouchSession updates last activity.
func (m *MockStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.LastActivity = at
	return nil
}

// UpdateSessionBusinessName updates the business name.
func (m *MockStore) UpdateSessionBusinessName(ctx context.Context, id, businessName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.BusinessName = businessName
	return nil
}

// DeleteSession removes a session.
func (m *MockStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// DeleteIdleSessions removes sessions idle since before.
func (m *MockStore) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.LastActivity.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// SessionCount reports how many sessions are stored.
func (m *MockStore) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// GetPreferences returns stored or zero-valued preferences.
func (m *MockStore) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prefs[userID]
	if !ok {
		return &Preferences{UserID: userID}, nil
	}
	c := *p
	return &c, nil
}

// SetSetupCompleted records the guide flag.
func (m *MockStore) SetSetupCompleted(ctx context.Context, userID string, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prefs[userID] = &Preferences{UserID: userID, SetupCompleted: completed, UpdatedAt: m.now()}
	return nil
}

// PutHandoff stores a copy of the handoff.
func (m *MockStore) PutHandoff(ctx context.Context, h *Handoff) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *h
	c.Payload = append([]byte(nil), h.Payload...)
	m.handoffs[handoffKey(h.TabID, h.Kind)] = &c
	return nil
}

// GetHandoff returns the live handoff.
func (m *MockStore) GetHandoff(ctx context.Context, tabID string, kind HandoffKind) (*Handoff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.handoffs[handoffKey(tabID, kind)]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(h.ExpiresAt) {
		return nil, ErrExpired
	}
	c := *h
	return &c, nil
}

// TakeHandoff reads and deletes the handoff.
func (m *MockStore) TakeHandoff(ctx context.Context, tabID string, kind HandoffKind) (*Handoff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := handoffKey(tabID, kind)
	h, ok := m.handoffs[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.handoffs, key)
	if !m.now().Before(h.ExpiresAt) {
		return nil, ErrExpired
	}
	return h, nil
}

// DeleteHandoff removes the handoff.
func (m *MockStore) DeleteHandoff(ctx context.Context, tabID string, kind HandoffKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.handoffs, handoffKey(tabID, kind))
	return nil
}

// DeleteExpiredHandoffs removes expired handoffs.
func (m *MockStore) DeleteExpiredHandoffs(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key, h := range m.handoffs {
		if !now.Before(h.ExpiresAt) {
			delete(m.handoffs, key)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}
