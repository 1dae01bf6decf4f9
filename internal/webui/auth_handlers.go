// ABOUTME: Handlers for the signed-out screens: login, signup, verification and password reset
// ABOUTME: Emailed token links are routed here before any session check

package webui

import (
	"net/http"
	"strings"

	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/authflow"
)

type credentialsData struct {
	View         authflow.ViewState
	Email        string
	BusinessName string
	Error        string
	// Sent is set once a signup or reset request has gone out.
	Sent bool
}

type resetData struct {
	Token    string
	Message  string
	Success  bool
	Redirect int // seconds before returning to login
}

type verifyData struct {
	authflow.Outcome
	Token string
}

// handleRoot routes emailed links, then sends the visitor to the dashboard
// or to login.
func (ui *UI) handleRoot(w http.ResponseWriter, r *http.Request) {
	if entry := authflow.Route(r.URL.Query()); entry.Kind != authflow.EntryNone {
		http.Redirect(w, r, entry.Location(), http.StatusSeeOther)
		return
	}
	if auth.FromContext(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, authflow.ViewLogin.Path(), http.StatusSeeOther)
}

// redirectSignedIn sends signed-in visitors away from the signed-out screens.
func redirectSignedIn(w http.ResponseWriter, r *http.Request) bool {
	if auth.FromContext(r.Context()) == nil {
		return false
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	return true
}

func (ui *UI) renderCredentials(w http.ResponseWriter, r *http.Request, status int, d credentialsData) {
	titles := map[authflow.ViewState]string{
		authflow.ViewLogin:          "Login",
		authflow.ViewSignup:         "Create Account",
		authflow.ViewForgotPassword: "Reset Password",
	}
	ui.render(w, status, string(d.View), ui.newPage(r, titles[d.View], "", d))
}

func (ui *UI) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if entry := authflow.Route(r.URL.Query()); entry.Kind != authflow.EntryNone {
		http.Redirect(w, r, entry.Location(), http.StatusSeeOther)
		return
	}
	if redirectSignedIn(w, r) {
		return
	}
	d := credentialsData{View: authflow.ViewLogin, Email: r.URL.Query().Get("email")}
	ui.renderCredentials(w, r, http.StatusOK, d)
}

func (ui *UI) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	d := credentialsData{View: authflow.ViewLogin, Email: email}

	if v := authflow.ValidateLogin(email, password); v != nil {
		d.Error = v.Message
		ui.renderCredentials(w, r, http.StatusUnprocessableEntity, d)
		return
	}

	res, id := ui.sessions.Login(r.Context(), email, password)
	if !res.Success {
		d.Error = res.Error
		ui.renderCredentials(w, r, http.StatusUnauthorized, d)
		return
	}
	auth.SetSessionCookie(w, id.SessionID, ui.secure(r))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (ui *UI) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if redirectSignedIn(w, r) {
		return
	}
	ui.renderCredentials(w, r, http.StatusOK, credentialsData{View: authflow.ViewSignup})
}

func (ui *UI) handleSignup(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	businessName := strings.TrimSpace(r.FormValue("business_name"))
	d := credentialsData{View: authflow.ViewSignup, Email: email, BusinessName: businessName}

	if v := authflow.ValidateSignup(email, password, businessName); v != nil {
		d.Error = v.Message
		ui.renderCredentials(w, r, http.StatusUnprocessableEntity, d)
		return
	}

	res := ui.sessions.Signup(r.Context(), tabID(r), email, password, businessName)
	if !res.Success {
		d.Error = res.Error
		ui.renderCredentials(w, r, http.StatusBadRequest, d)
		return
	}
	d.Sent = true
	ui.renderCredentials(w, r, http.StatusOK, d)
}

func (ui *UI) handleForgotPage(w http.ResponseWriter, r *http.Request) {
	ui.renderCredentials(w, r, http.StatusOK, credentialsData{View: authflow.ViewForgotPassword})
}

func (ui *UI) handleForgot(w http.ResponseWriter, r *http.Request) {
	out := authflow.ForgotPassword(r.Context(), ui.backend, r.FormValue("email"))
	d := credentialsData{View: authflow.ViewForgotPassword, Email: out.Email, Sent: out.Sent}
	status := http.StatusOK
	if !out.Sent {
		d.Error = out.Message
		status = http.StatusUnprocessableEntity
		if out.Invalid == nil {
			status = http.StatusBadGateway
		}
	}
	ui.renderCredentials(w, r, status, d)
}

func (ui *UI) handleResetPage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(authflow.ParamToken)
	if token == "" {
		http.Redirect(w, r, authflow.ViewLogin.Path(), http.StatusSeeOther)
		return
	}
	ui.render(w, http.StatusOK, "reset", ui.newPage(r, "Create New Password", "", resetData{Token: token}))
}

func (ui *UI) handleReset(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	if token == "" {
		http.Redirect(w, r, authflow.ViewLogin.Path(), http.StatusSeeOther)
		return
	}

	out := authflow.ResetPassword(r.Context(), ui.backend, token, r.FormValue("password"), r.FormValue("confirm_password"))
	d := resetData{Token: token, Message: out.Message, Success: out.Success}
	status := http.StatusOK
	switch {
	case out.Success:
		d.Redirect = int(authflow.ResetRedirectDelay.Seconds())
	case out.Invalid != nil:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusBadRequest
	}
	ui.render(w, status, "reset", ui.newPage(r, "Create New Password", "", d))
}

func (ui *UI) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(authflow.ParamToken)
	if token == "" {
		http.Redirect(w, r, authflow.ViewLogin.Path(), http.StatusSeeOther)
		return
	}
	out := ui.verifier.Verify(r.Context(), tabID(r), token)
	ui.render(w, http.StatusOK, "verify", ui.newPage(r, "Verify Email", "", verifyData{Outcome: out, Token: token}))
}

func (ui *UI) handleAutoLogin(w http.ResponseWriter, r *http.Request) {
	out, id := ui.verifier.CompleteAutoLogin(r.Context(), tabID(r))
	if id != nil {
		auth.SetSessionCookie(w, id.SessionID, ui.secure(r))
	}
	ui.render(w, http.StatusOK, "verify", ui.newPage(r, "Verify Email", "", verifyData{Outcome: out}))
}

func (ui *UI) handleVerifyResend(w http.ResponseWriter, r *http.Request) {
	out := ui.verifier.Resend(r.Context(), tabID(r), strings.TrimSpace(r.FormValue("email")))
	ui.render(w, http.StatusOK, "verify", ui.newPage(r, "Verify Email", "", verifyData{Outcome: out}))
}

func (ui *UI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sid := auth.SessionIDFromRequest(r); sid != "" {
		ui.sessions.Logout(r.Context(), sid)
	}
	auth.ClearSessionCookie(w, ui.secure(r))
	http.Redirect(w, r, authflow.ViewLogin.Path(), http.StatusSeeOther)
}

// handleActivity records pointer, key, click or scroll activity reported by
// the page script. RequireSession has already counted it.
func (ui *UI) handleActivity(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
