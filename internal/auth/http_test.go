// ABOUTME: Tests for the session-resolving HTTP middleware
// ABOUTME: Covers redirects, htmx redirects, optional sessions and cookie helpers

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator map[string]*Identity

func (f fakeAuthenticator) Authenticate(_ context.Context, sessionID string) (*Identity, error) {
	if id, ok := f[sessionID]; ok {
		return id, nil
	}
	return nil, ErrNoSession
}

func identityEcho(w http.ResponseWriter, r *http.Request) {
	if id := FromContext(r.Context()); id != nil {
		_, _ = w.Write([]byte(id.Email))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
}

func TestRequireSession(t *testing.T) {
	authn := fakeAuthenticator{"good": {SessionID: "good", Email: "ada@example.com"}}
	h := RequireSession(authn, "/login")(http.HandlerFunc(identityEcho))

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/leads", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ada@example.com", rec.Body.String())
	})

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("unknown session clears cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/leads", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookieName, cookies[0].Name)
		assert.Less(t, cookies[0].MaxAge, 0)
	})

	t.Run("htmx request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/leads", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
	})
}

func TestOptionalSession(t *testing.T) {
	authn := fakeAuthenticator{"good": {Email: "ada@example.com"}}
	h := OptionalSession(authn)(http.HandlerFunc(identityEcho))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pricing", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "ada@example.com", rec.Body.String())
}

func TestSetSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "sid", true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "sid", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}
