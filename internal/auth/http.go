// ABOUTME: HTTP middleware that resolves the session cookie to a signed-in identity
// ABOUTME: Redirects anonymous requests to the login page, honouring htmx requests

package auth

import (
	"context"
	"errors"
	"net/http"
)

// SessionCookieName is the cookie holding the opaque session id.
const SessionCookieName = "nova_session"

// ErrNoSession is returned by an Authenticator when the cookie does not map
// to a live session.
var ErrNoSession = errors.New("no session")

// Authenticator resolves a session id to an identity and records activity.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*Identity, error)
}

// SessionIDFromRequest returns the session cookie value, or "".
func SessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// RequireSession attaches the identity to the request context, or redirects
// to loginPath when there is none.
func RequireSession(a Authenticator, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolve(r, a)
			if err != nil {
				ClearSessionCookie(w, r.TLS != nil)
				redirect(w, r, loginPath)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalSession attaches the identity when present and continues either way.
func OptionalSession(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := resolve(r, a); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolve(r *http.Request, a Authenticator) (*Identity, error) {
	sid := SessionIDFromRequest(r)
	if sid == "" {
		return nil, ErrNoSession
	}
	return a.Authenticate(r.Context(), sid)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// SetSessionCookie issues the session cookie.
func SetSessionCookie(w http.ResponseWriter, sessionID string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
