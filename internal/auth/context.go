// ABOUTME: Signed-in identity carried through request handlers
// ABOUTME: Provides WithIdentity/FromContext for propagating the session via context

package auth

import (
	"context"
	"strings"
)

// Identity is the signed-in user as seen by page handlers.
type Identity struct {
	SessionID    string
	UserID       string
	Email        string
	BusinessName string
	Token        string // backend bearer token
}

// Initial returns the uppercased first letter of the email, used as the avatar.
func (i *Identity) Initial() string {
	if i == nil || i.Email == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(i.Email)[0]))
}

type identityKey struct{}

// WithIdentity returns a new context with the identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext retrieves the identity from the context, returning nil if not present.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// MustFromContext retrieves the identity from the context, panicking if not present.
func MustFromContext(ctx context.Context) *Identity {
	id := FromContext(ctx)
	if id == nil {
		panic("auth: Identity not found in context")
	}
	return id
}
