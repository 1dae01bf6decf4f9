// ABOUTME: Package session manages signed-in dashboard sessions
// ABOUTME: Login, signup handoff, exchange redemption, logout and the inactivity timeout

// Package session owns the lifecycle of a dashboard session.
//
// The backend bearer token and user record never leave the server: the
// browser holds only an opaque session id in a cookie, and the Manager maps
// that id to the stored token. A session is signed in only when both the
// token and the user record are present.
//
// Every authenticated request counts as activity. A session with no
// activity for the idle timeout (two hours by default) is logged out by an
// IdleTimer; rows left behind by a restart are removed lazily on their next
// request or by the periodic Reap.
package session
