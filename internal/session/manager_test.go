// ABOUTME: Tests for the session Manager with a fake backend and the mock store
// ABOUTME: Covers login, signup handoffs, exchange redemption, activity and idle logout

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/novaapi"
	"github.com/2389/nova-dashboard/internal/store"
)

type fakeAPI struct {
	mu          sync.Mutex
	loginErr    error
	signupErr   error
	exchangeErr error
	exchange    string
	token       string
	signups     int
}

func (f *fakeAPI) result() *novaapi.LoginResult {
	raw := json.RawMessage(`{"id":7,"email":"ada@example.com","business_name":"Ada's Bakery"}`)
	return &novaapi.LoginResult{
		Token:   f.token,
		User:    novaapi.User{ID: "7", Email: "ada@example.com", BusinessName: "Ada's Bakery"},
		RawUser: raw,
	}
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*novaapi.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.result(), nil
}

func (f *fakeAPI) Signup(ctx context.Context, email, password, businessName string) (*novaapi.SignupResult, error) {
	f.mu.Lock()
	f.signups++
	f.mu.Unlock()
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &novaapi.SignupResult{ExchangeToken: f.exchange}, nil
}

func (f *fakeAPI) RedeemExchange(ctx context.Context, exchangeToken string) (*novaapi.LoginResult, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.result(), nil
}

type fixture struct {
	mgr   *Manager
	store *store.MockStore
	api   *fakeAPI
	clock *ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := NewManualClock(epoch)
	s := store.NewMockStore()
	s.Now = clock.Now
	api := &fakeAPI{token: "opaque-token", exchange: "xchg-1"}
	mgr := NewManager(s, api, auth.NewTokenInspector(nil), Config{
		IdleTimeout: 2 * time.Hour,
		HandoffTTL:  30 * time.Minute,
		Clock:       clock,
	})
	t.Cleanup(mgr.Stop)
	return &fixture{mgr: mgr, store: s, api: api, clock: clock}
}

func TestLogin_CreatesSession(t *testing.T) {
	f := newFixture(t)

	res, id := f.mgr.Login(t.Context(), "ada@example.com", "password1")
	require.True(t, res.Success)
	require.NotNil(t, id)
	assert.Equal(t, "7", id.UserID)
	assert.Equal(t, "Ada's Bakery", id.BusinessName)
	assert.Equal(t, "opaque-token", id.Token)

	sess, err := f.store.GetSession(t.Context(), id.SessionID)
	require.NoError(t, err)
	assert.True(t, sess.Complete())
	assert.JSONEq(t, `{"id":7,"email":"ada@example.com","business_name":"Ada's Bakery"}`, sess.UserJSON)
	assert.Equal(t, 1, f.mgr.ActiveTimers())
}

func TestLogin_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail", &novaapi.Error{Kind: novaapi.KindAuthentication, Status: http.StatusUnauthorized, Detail: "Invalid credentials"}, "Invalid credentials"},
		{"no detail", &novaapi.Error{Kind: novaapi.KindServer, Status: http.StatusInternalServerError}, MsgLoginFailed},
		{"transport", &novaapi.Error{Kind: novaapi.KindTransport, Err: errors.New("dial tcp: refused")}, MsgLoginFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.api.loginErr = tt.err

			res, id := f.mgr.Login(t.Context(), "ada@example.com", "bad")
			assert.False(t, res.Success)
			assert.Nil(t, id)
			assert.Equal(t, tt.want, res.Error)
			assert.Equal(t, 0, f.store.SessionCount())
		})
	}
}

func TestLogin_ExpiredJWTRejected(t *testing.T) {
	f := newFixture(t)
	// {"alg":"HS256","typ":"JWT"}.{"sub":"7","exp":1}.sig
	f.api.token = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiI3IiwiZXhwIjoxfQ.c2ln"

	res, id := f.mgr.Login(t.Context(), "ada@example.com", "password1")
	assert.False(t, res.Success)
	assert.Nil(t, id)
	assert.Equal(t, MsgLoginFailed, res.Error)
	assert.Equal(t, 0, f.store.SessionCount())
}

func TestSignup_StagesHandoffs(t *testing.T) {
	f := newFixture(t)

	res := f.mgr.Signup(t.Context(), "tab-1", "ada@example.com", "password1", "Ada's Bakery")
	require.True(t, res.Success)

	email, err := f.store.GetHandoff(t.Context(), "tab-1", store.HandoffSignupEmail)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", string(email.Payload))
	assert.Equal(t, epoch.Add(30*time.Minute), email.ExpiresAt)

	xchg, err := f.store.GetHandoff(t.Context(), "tab-1", store.HandoffSignupExchange)
	require.NoError(t, err)
	assert.Equal(t, "xchg-1", string(xchg.Payload))

	// Handoffs are scoped to the tab that signed up.
	_, err = f.store.GetHandoff(t.Context(), "tab-2", store.HandoffSignupEmail)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSignup_NoExchangeToken(t *testing.T) {
	f := newFixture(t)
	f.api.exchange = ""

	require.True(t, f.mgr.Signup(t.Context(), "tab-1", "ada@example.com", "password1", "Ada's").Success)

	_, err := f.store.GetHandoff(t.Context(), "tab-1", store.HandoffSignupExchange)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSignup_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail", &novaapi.Error{Kind: novaapi.KindValidation, Status: http.StatusBadRequest, Detail: "Email already registered"}, "Email already registered"},
		{"no detail", &novaapi.Error{Kind: novaapi.KindValidation, Status: http.StatusBadRequest}, MsgSignupFailed},
		{"transport", &novaapi.Error{Kind: novaapi.KindTransport, Err: errors.New("timeout")}, MsgTryAgain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.api.signupErr = tt.err

			res := f.mgr.Signup(t.Context(), "tab-1", "ada@example.com", "password1", "Ada's")
			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Error)

			_, err := f.store.GetHandoff(t.Context(), "tab-1", store.HandoffSignupEmail)
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestRedeem(t *testing.T) {
	f := newFixture(t)

	id, err := f.mgr.Redeem(t.Context(), "xchg-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, 1, f.store.SessionCount())

	f.api.exchangeErr = &novaapi.Error{Kind: novaapi.KindNotFoundOrStale, Status: http.StatusGone}
	_, err = f.mgr.Redeem(t.Context(), "xchg-1")
	assert.Equal(t, novaapi.KindNotFoundOrStale, novaapi.KindOf(err))
	assert.Equal(t, 1, f.store.SessionCount())
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	_, id := f.mgr.Login(t.Context(), "ada@example.com", "password1")
	require.NotNil(t, id)

	f.clock.Advance(time.Hour)
	got, err := f.mgr.Authenticate(t.Context(), id.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "A", got.Initial())

	sess, err := f.store.GetSession(t.Context(), id.SessionID)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Hour), sess.LastActivity)
}

func TestAuthenticate_UnknownSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.Authenticate(t.Context(), "nope")
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestAuthenticate_IncompleteSessionIsCleared(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.CreateSession(t.Context(), &store.Session{
		ID: "half", UserID: "7", UserJSON: `{"id":7}`, CreatedAt: epoch, LastActivity: epoch,
	}))

	_, err := f.mgr.Authenticate(t.Context(), "half")
	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.Equal(t, 0, f.store.SessionCount())
}

func TestIdleLogout(t *testing.T) {
	f := newFixture(t)
	var loggedOut []string
	f.mgr.OnLogout(func(id string) { loggedOut = append(loggedOut, id) })

	_, id := f.mgr.Login(t.Context(), "ada@example.com", "password1")
	require.NotNil(t, id)

	f.clock.Advance(2*time.Hour - time.Second)
	_, err := f.mgr.Authenticate(t.Context(), id.SessionID)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	assert.Equal(t, 1, f.store.SessionCount(), "activity at T-1s keeps the session alive at T")

	f.clock.Advance(2*time.Hour - time.Second)
	assert.Equal(t, 0, f.store.SessionCount())
	assert.Equal(t, []string{id.SessionID}, loggedOut)
	assert.Equal(t, 0, f.mgr.ActiveTimers())
}

func TestAuthenticate_StaleRowAfterRestart(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.CreateSession(t.Context(), &store.Session{
		ID: "old", UserID: "7", UserJSON: `{"id":7}`, Token: "tok",
		CreatedAt: epoch.Add(-3 * time.Hour), LastActivity: epoch.Add(-2 * time.Hour),
	}))

	_, err := f.mgr.Authenticate(t.Context(), "old")
	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.Equal(t, 0, f.store.SessionCount())
}

// vanishingStore deletes a session right after it is read, as a Logout
// racing with Authenticate would.
type vanishingStore struct {
	*store.MockStore
}

func (s vanishingStore) GetSession(ctx context.Context, id string) (*store.Session, error) {
	sess, err := s.MockStore.GetSession(ctx, id)
	if err == nil {
		_ = s.MockStore.DeleteSession(ctx, id)
	}
	return sess, err
}

func TestAuthenticate_SessionDeletedConcurrently(t *testing.T) {
	clock := NewManualClock(epoch)
	s := store.NewMockStore()
	s.Now = clock.Now
	mgr := NewManager(vanishingStore{s}, &fakeAPI{token: "opaque-token"}, auth.NewTokenInspector(nil), Config{Clock: clock})
	t.Cleanup(mgr.Stop)

	_, id := mgr.Login(t.Context(), "ada@example.com", "password1")
	require.NotNil(t, id)
	require.Equal(t, 1, mgr.ActiveTimers())

	_, err := mgr.Authenticate(t.Context(), id.SessionID)
	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.Equal(t, 0, mgr.ActiveTimers())
	assert.Equal(t, 0, clock.Pending())
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	_, id := f.mgr.Login(t.Context(), "ada@example.com", "password1")
	require.NotNil(t, id)

	f.mgr.Logout(t.Context(), id.SessionID)
	assert.Equal(t, 0, f.store.SessionCount())
	assert.Equal(t, 0, f.mgr.ActiveTimers())

	// Logging out twice is harmless.
	f.mgr.Logout(t.Context(), id.SessionID)
}

func TestHydrate_ReapsIdleSessionsAndExpiredHandoffs(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	require.NoError(t, f.store.CreateSession(ctx, &store.Session{
		ID: "stale", UserJSON: "{}", Token: "t", CreatedAt: epoch, LastActivity: epoch.Add(-3 * time.Hour),
	}))
	require.NoError(t, f.store.CreateSession(ctx, &store.Session{
		ID: "fresh", UserJSON: "{}", Token: "t", CreatedAt: epoch, LastActivity: epoch.Add(-time.Minute),
	}))
	require.NoError(t, f.store.PutHandoff(ctx, &store.Handoff{
		TabID: "tab", Kind: store.HandoffDemoConfig, Payload: []byte("{}"),
		CreatedAt: epoch.Add(-time.Hour), ExpiresAt: epoch.Add(-time.Minute),
	}))

	assert.False(t, f.mgr.Ready())
	require.NoError(t, f.mgr.Hydrate(ctx))
	assert.True(t, f.mgr.Ready())

	assert.Equal(t, 1, f.store.SessionCount())
	_, err := f.store.GetSession(ctx, "fresh")
	assert.NoError(t, err)
}

func TestSetBusinessName(t *testing.T) {
	f := newFixture(t)
	_, id := f.mgr.Login(t.Context(), "ada@example.com", "password1")
	require.NotNil(t, id)

	require.NoError(t, f.mgr.SetBusinessName(t.Context(), id.SessionID, "Ada's Cafe"))
	got, err := f.mgr.Authenticate(t.Context(), id.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Ada's Cafe", got.BusinessName)
}
