// ABOUTME: One-shot email verification with auto sign-in through the signup exchange token
// ABOUTME: Also resends verification emails to the best-known address for the tab

package authflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/dedupe"
	"github.com/2389/nova-dashboard/internal/novaapi"
	"github.com/2389/nova-dashboard/internal/store"
)

// VerificationState is the progress of one verification attempt.
type VerificationState string

const (
	StateVerifying           VerificationState = "verifying"
	StateSuccess             VerificationState = "success"
	StateLoggingIn           VerificationState = "logging_in"
	StateVerifiedManualLogin VerificationState = "verified_manual_login"
	StateResent              VerificationState = "resent"
	StateError               VerificationState = "error"
)

// Messages shown on the verification page.
const (
	MsgVerificationFailed = "Verification failed. The link may be expired or invalid."
	MsgEmailNotFound      = "Email not found. Please try signing up again."
	MsgResendFailed       = "Failed to resend verification email. Please try again."
)

// VerifyAPI is the backend surface verification needs.
type VerifyAPI interface {
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
}

// Redeemer signs a visitor in with a signup exchange token.
type Redeemer interface {
	Redeem(ctx context.Context, exchangeToken string) (*auth.Identity, error)
}

// Outcome is what the verification page renders.
type Outcome struct {
	State   VerificationState
	Message string
	Email   string

	// AutoLogin is set on success when the tab holds an exchange token; the
	// page then calls CompleteAutoLogin after a short pause.
	AutoLogin bool

	// Duplicate is set when the token was already claimed by an earlier
	// request and no backend call was made.
	Duplicate bool
}

// Verifier runs the verification sub-flow.
type Verifier struct {
	api      VerifyAPI
	sessions Redeemer
	handoffs store.HandoffStore
	guard    *dedupe.Guard
	logger   *slog.Logger
}

// NewVerifier creates a Verifier. The guard decides which request gets to
// call the backend for a given token.
func NewVerifier(api VerifyAPI, sessions Redeemer, handoffs store.HandoffStore, guard *dedupe.Guard, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		api:      api,
		sessions: sessions,
		handoffs: handoffs,
		guard:    guard,
		logger:   logger.With("component", "authflow"),
	}
}

// Verify confirms the email address for token. The backend is called at most
// once per token while the guard remembers it.
func (v *Verifier) Verify(ctx context.Context, tabID, token string) Outcome {
	if !v.guard.Claim(token) {
		return Outcome{State: StateVerifying, Duplicate: true}
	}

	if err := v.api.VerifyEmail(ctx, token); err != nil {
		v.logger.Info("email verification failed", "kind", novaapi.KindOf(err), "error", err)
		return Outcome{
			State:   StateError,
			Message: novaapi.MessageOf(err, MsgVerificationFailed),
			Email:   v.peek(ctx, tabID, store.HandoffSignupEmail),
		}
	}

	if v.peek(ctx, tabID, store.HandoffSignupExchange) != "" {
		return Outcome{State: StateSuccess, AutoLogin: true}
	}
	return Outcome{State: StateVerifiedManualLogin, Email: v.take(ctx, tabID, store.HandoffSignupEmail)}
}

// CompleteAutoLogin redeems the tab's exchange token. The staged signup
// values are consumed whatever the result. On success the returned
// identity's session is live and the outcome is logging_in.
func (v *Verifier) CompleteAutoLogin(ctx context.Context, tabID string) (Outcome, *auth.Identity) {
	exchange := v.take(ctx, tabID, store.HandoffSignupExchange)
	email := v.take(ctx, tabID, store.HandoffSignupEmail)

	if exchange == "" {
		return Outcome{State: StateVerifiedManualLogin, Email: email}, nil
	}

	id, err := v.sessions.Redeem(ctx, exchange)
	if err != nil {
		v.logger.Info("auto sign-in after verification failed", "kind", novaapi.KindOf(err), "error", err)
		return Outcome{State: StateVerifiedManualLogin, Email: email}, nil
	}
	return Outcome{State: StateLoggingIn, Email: email}, id
}

// Resend sends a fresh verification email to explicitEmail, or to the
// address staged at signup when none is given.
func (v *Verifier) Resend(ctx context.Context, tabID, explicitEmail string) Outcome {
	email := strings.TrimSpace(explicitEmail)
	if email == "" {
		email = v.peek(ctx, tabID, store.HandoffSignupEmail)
	}
	if email == "" {
		return Outcome{State: StateError, Message: MsgEmailNotFound}
	}

	if err := v.api.ResendVerification(ctx, email); err != nil {
		v.logger.Warn("resending verification failed", "kind", novaapi.KindOf(err), "error", err)
		return Outcome{State: StateError, Message: MsgResendFailed, Email: email}
	}
	return Outcome{State: StateResent, Email: email}
}

func (v *Verifier) peek(ctx context.Context, tabID string, kind store.HandoffKind) string {
	if tabID == "" {
		return ""
	}
	h, err := v.handoffs.GetHandoff(ctx, tabID, kind)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrExpired) {
			v.logger.Error("reading handoff", "kind", kind, "error", err)
		}
		return ""
	}
	return string(h.Payload)
}

func (v *Verifier) take(ctx context.Context, tabID string, kind store.HandoffKind) string {
	if tabID == "" {
		return ""
	}
	h, err := v.handoffs.TakeHandoff(ctx, tabID, kind)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrExpired) {
			v.logger.Error("consuming handoff", "kind", kind, "error", err)
		}
		return ""
	}
	return string(h.Payload)
}
