// ABOUTME: Unit tests for backend token inspection
// ABOUTME: Tests verified, unverified, expired and opaque tokens

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestTokenInspector_VerifiedValid(t *testing.T) {
	secret := []byte("test-secret-key-for-jwt-signing")
	inspector := NewTokenInspector(secret)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, secret, jwt.MapClaims{"sub": "user-42", "exp": exp.Unix()})

	info, err := inspector.Inspect(token)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Subject != "user-42" {
		t.Errorf("Subject = %q, want user-42", info.Subject)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", info.ExpiresAt, exp)
	}
	if info.Opaque {
		t.Error("Opaque = true for a JWT")
	}
}

func TestTokenInspector_VerifiedWrongSecret(t *testing.T) {
	inspector := NewTokenInspector([]byte("right-secret"))
	token := signToken(t, []byte("wrong-secret"), jwt.MapClaims{"sub": "user-42"})

	_, err := inspector.Inspect(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Inspect() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenInspector_VerifiedRejectsOpaque(t *testing.T) {
	inspector := NewTokenInspector([]byte("secret"))

	_, err := inspector.Inspect("opaque-session-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Inspect() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenInspector_Expired(t *testing.T) {
	secret := []byte("secret")
	token := signToken(t, secret, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	for name, inspector := range map[string]*TokenInspector{
		"verified":   NewTokenInspector(secret),
		"unverified": NewTokenInspector(nil),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := inspector.Inspect(token)
			if !errors.Is(err, ErrExpiredToken) {
				t.Errorf("Inspect() error = %v, want ErrExpiredToken", err)
			}
		})
	}
}

func TestTokenInspector_UnverifiedReadsClaims(t *testing.T) {
	inspector := NewTokenInspector(nil)
	token := signToken(t, []byte("whatever-the-backend-uses"), jwt.MapClaims{"sub": "user-7"})

	info, err := inspector.Inspect(token)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Subject != "user-7" {
		t.Errorf("Subject = %q, want user-7", info.Subject)
	}
	if !info.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero without exp", info.ExpiresAt)
	}
}

func TestTokenInspector_UnverifiedOpaque(t *testing.T) {
	info, err := NewTokenInspector(nil).Inspect("opaque-session-token")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if !info.Opaque {
		t.Error("Opaque = false, want true")
	}
}

func TestTokenInspector_Empty(t *testing.T) {
	_, err := NewTokenInspector(nil).Inspect("")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Inspect(\"\") error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenInspector_InjectedClock(t *testing.T) {
	secret := []byte("secret")
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signToken(t, secret, jwt.MapClaims{"sub": "u", "exp": exp.Unix()})

	inspector := NewTokenInspector(secret)
	inspector.now = func() time.Time { return exp.Add(time.Second) }

	if _, err := inspector.Inspect(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Inspect() error = %v, want ErrExpiredToken", err)
	}
}
