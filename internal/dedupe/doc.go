// Package dedupe provides one-shot guards: the first caller to claim a key
// within a time window wins, every later caller is told it is a duplicate.
//
// The email verification flow uses a Guard keyed by verification token so a
// reload, a double click or a second tab never sends the same token to the
// backend twice.
package dedupe
