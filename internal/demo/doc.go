// Package demo implements the public, unauthenticated agent sandbox.
//
// A visitor's configuration and message count live in tab-scoped handoffs
// that expire on their own. They become durable only if the visitor signs up
// from the demo page, at which point the normal signup and onboarding flow
// takes over.
package demo
