// ABOUTME: Request middleware: logging, body limits, the per-tab cookie, CSRF and the onboarding gate
// ABOUTME: CSRF uses a double-submit cookie checked against a form field or X-CSRF-Token header

package webui

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/2389/nova-dashboard/internal/auth"
)

const (
	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "nova_csrf"

	// TabCookieName scopes handoffs to one browser tab session. It has no
	// expiry so it ends with the browser session.
	TabCookieName = "nova_tab"

	csrfFormField  = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	csrfContextKey contextKey = "csrf_token"
	tabContextKey  contextKey = "tab_id"
)

// requestLogger logs every request at debug and server errors at error.
func (ui *UI) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		}
		if ww.Status() >= http.StatusInternalServerError {
			ui.logger.Error("request failed", attrs...)
			return
		}
		ui.logger.Debug("request", attrs...)
	})
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// tabCookie ensures the browser has a tab id and puts it in the context.
func (ui *UI) tabCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tabID := ""
		if c, err := r.Cookie(TabCookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				tabID = c.Value
			}
		}
		if tabID == "" {
			tabID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     TabCookieName,
				Value:    tabID,
				Path:     "/",
				HttpOnly: true,
				Secure:   ui.secure(r),
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tabContextKey, tabID)))
	})
}

// csrf issues the token cookie when missing and rejects unsafe requests
// whose form field or header does not match it.
func (ui *UI) csrf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(CSRFCookieName); err == nil {
			token = c.Value
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if !validCSRF(r, token) {
				ui.logger.Warn("csrf check failed", "path", r.URL.Path)
				ui.renderError(w, r, http.StatusForbidden, "Invalid request, please try again")
				return
			}
		}

		if token == "" {
			var err error
			token, err = generateSecureToken(32)
			if err != nil {
				ui.logger.Error("failed to generate CSRF token", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   ui.secure(r),
				SameSite: http.SameSiteStrictMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfContextKey, token)))
	})
}

func validCSRF(r *http.Request, cookieToken string) bool {
	if cookieToken == "" {
		return false
	}
	submitted := r.Header.Get(csrfHeaderName)
	if submitted == "" {
		submitted = r.FormValue(csrfFormField)
	}
	return submitted != "" && submitted == cookieToken
}

// requireOnboarded sends sessions that still need onboarding to the wizard.
func (ui *UI) requireOnboarded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := auth.MustFromContext(r.Context())
		if ui.gate.Check(r.Context(), id.SessionID, id.Token).NeedsOnboarding {
			http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (ui *UI) secure(r *http.Request) bool {
	return ui.cfg.SecureCookies || r.TLS != nil
}

func csrfToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

func tabID(r *http.Request) string {
	id, _ := r.Context().Value(tabContextKey).(string)
	return id
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
