// Package authflow implements the unauthenticated screens: entry routing
// from emailed links, one-shot email verification with automatic sign-in,
// verification resend, password reset and forgot-password.
package authflow
