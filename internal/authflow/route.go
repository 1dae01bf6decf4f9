// ABOUTME: Unauthenticated screen states and query-parameter entry routing
// ABOUTME: Maps token/action links from emails onto verification or password reset

package authflow

import "net/url"

// ViewState is the unauthenticated screen being shown.
type ViewState string

const (
	ViewLogin          ViewState = "login"
	ViewSignup         ViewState = "signup"
	ViewForgotPassword ViewState = "forgot-password"
	ViewResetPassword  ViewState = "reset-password"
)

// Path returns the dashboard route that renders the view.
func (v ViewState) Path() string {
	switch v {
	case ViewSignup:
		return "/signup"
	case ViewForgotPassword:
		return "/forgot-password"
	case ViewResetPassword:
		return "/reset-password"
	default:
		return "/login"
	}
}

// EntryKind says how a page load with query parameters should be handled.
type EntryKind int

const (
	EntryNone EntryKind = iota
	EntryVerify
	EntryReset
)

// Query parameter names and action values used in emailed links.
const (
	ParamToken          = "token"
	ParamAction         = "action"
	ActionVerifyEmail   = "verify-email"
	ActionResetPassword = "reset-password"
)

// Entry is the result of routing a page load.
type Entry struct {
	Kind  EntryKind
	Token string
}

// Route inspects the query of a landing URL. A token with action
// reset-password enters the reset screen. Any other token enters email
// verification: links sent before the action parameter existed carry a bare
// token.
func Route(q url.Values) Entry {
	token := q.Get(ParamToken)
	if token == "" {
		return Entry{Kind: EntryNone}
	}
	if q.Get(ParamAction) == ActionResetPassword {
		return Entry{Kind: EntryReset, Token: token}
	}
	return Entry{Kind: EntryVerify, Token: token}
}

// Location returns the dashboard path an entry should be served from.
func (e Entry) Location() string {
	switch e.Kind {
	case EntryVerify:
		return "/verify?" + url.Values{ParamToken: {e.Token}}.Encode()
	case EntryReset:
		return ViewResetPassword.Path() + "?" + url.Values{ParamToken: {e.Token}}.Encode()
	default:
		return ""
	}
}
