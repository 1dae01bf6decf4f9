// ABOUTME: Password reset, forgot-password and credential form validation
// ABOUTME: Local checks run before any backend call; forgot-password never reveals account existence

package authflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/2389/nova-dashboard/internal/form"
	"github.com/2389/nova-dashboard/internal/novaapi"
)

// MinPasswordLength is the shortest password the forms accept.
const MinPasswordLength = 8

// ResetRedirectDelay is how long the reset confirmation shows before the
// page returns to login.
const ResetRedirectDelay = 2 * time.Second

// Form messages.
const (
	MsgFillAllFields    = "Please fill in all fields"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgPasswordMismatch = "Passwords do not match"
	MsgEnterEmail       = "Please enter your email"
	MsgResetSucceeded   = "Password reset successful! Redirecting to login..."
	MsgResetFailed      = "Failed to reset password. The link may be expired."
	MsgTryAgain         = "Something went wrong. Please try again."
)

// ResetAPI resets a password with an emailed token.
type ResetAPI interface {
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// ForgotAPI requests a password reset email.
type ForgotAPI interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

// ResetOutcome is the result of a reset attempt.
type ResetOutcome struct {
	Success bool
	Message string
	// Invalid is set when local validation rejected the form.
	Invalid *form.ValidationError
}

// ValidateReset checks a new password and its confirmation.
func ValidateReset(password, confirm string) *form.ValidationError {
	switch {
	case password == "" || confirm == "":
		return form.Invalid("", MsgFillAllFields)
	case form.Shorter(password, MinPasswordLength):
		return form.Invalid("password", MsgPasswordTooShort)
	case password != confirm:
		return form.Invalid("confirm_password", MsgPasswordMismatch)
	}
	return nil
}

// ResetPassword validates the form and, when it passes, makes exactly one
// reset call.
func ResetPassword(ctx context.Context, api ResetAPI, token, password, confirm string) ResetOutcome {
	if v := ValidateReset(password, confirm); v != nil {
		return ResetOutcome{Message: v.Message, Invalid: v}
	}
	if err := api.ResetPassword(ctx, token, password); err != nil {
		slog.Default().Info("password reset failed", "component", "authflow", "kind", novaapi.KindOf(err))
		return ResetOutcome{Message: novaapi.MessageOf(err, MsgResetFailed)}
	}
	return ResetOutcome{Success: true, Message: MsgResetSucceeded}
}

// ForgotOutcome is the result of a forgot-password request.
type ForgotOutcome struct {
	Sent    bool
	Email   string
	Message string
	Invalid *form.ValidationError
}

// ForgotPassword requests a reset email. Every backend answer, success or
// rejection, reports Sent so the page cannot be used to probe which
// addresses have accounts. Only a transport failure is reported as an
// error.
func ForgotPassword(ctx context.Context, api ForgotAPI, email string) ForgotOutcome {
	email = strings.TrimSpace(email)
	if email == "" {
		v := form.Invalid("email", MsgEnterEmail)
		return ForgotOutcome{Message: v.Message, Invalid: v}
	}

	err := api.RequestPasswordReset(ctx, email)
	if err != nil && novaapi.IsTransport(err) {
		return ForgotOutcome{Email: email, Message: MsgTryAgain}
	}
	return ForgotOutcome{Sent: true, Email: email}
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) *form.ValidationError {
	if form.Blank(email) || password == "" {
		return form.Invalid("", MsgFillAllFields)
	}
	return nil
}

// ValidateSignup checks the signup form.
func ValidateSignup(email, password, businessName string) *form.ValidationError {
	if form.Blank(email, businessName) || password == "" {
		return form.Invalid("", MsgFillAllFields)
	}
	if form.Shorter(password, MinPasswordLength) {
		return form.Invalid("password", MsgPasswordTooShort)
	}
	return nil
}
