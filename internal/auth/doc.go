// Package auth ties browser requests to a signed-in Nova account.
//
// The Nova backend owns credentials and issues bearer tokens. The dashboard
// never sees a password beyond forwarding it once at login; it keeps the
// token server-side and hands the browser an opaque session cookie.
//
// # Tokens
//
// TokenInspector reads the exp and sub claims of backend tokens so expired
// tokens are refused before being stored. When api.token_secret is set the
// HS256 signature is verified as well. Opaque (non-JWT) tokens are accepted
// as-is when no secret is configured.
//
// # Request identity
//
// RequireSession resolves the nova_session cookie through an Authenticator
// (the session manager) and attaches an Identity to the request context:
//
//	id := auth.MustFromContext(r.Context())
//	leads, err := api.ListLeads(ctx, id.Token)
//
// Anonymous requests are redirected to the login page; htmx requests get an
// HX-Redirect header instead.
package auth
