// Package store provides persistence for nova-dashboard.
//
// The dashboard owns very little state: the Nova backend is the system of
// record for accounts, business profiles, leads and conversations. What the
// dashboard keeps is what a browser would otherwise keep locally:
//
//   - sessions: the backend bearer token and user record behind an opaque
//     cookie, with last-activity tracking for the idle timeout
//   - preferences: per-user flags such as quick setup guide completion
//   - handoffs: short-lived values scoped to one browser tab (the signup
//     exchange token, the signup email, the demo sandbox draft and turn count)
//
// SQLiteStore is the production implementation (modernc.org/sqlite, WAL mode).
// MockStore is an in-memory implementation for tests.
//
// Timestamps are stored as fixed-width UTC text so range queries can compare
// them directly.
package store
