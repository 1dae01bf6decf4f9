// ABOUTME: Inspection of backend bearer tokens before they are stored or reused
// ABOUTME: Verifies HS256 when a secret is configured, otherwise reads exp/sub unverified

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenInfo is what the dashboard can learn from a backend token.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
	Opaque    bool      // true when the token is not a JWT
}

// TokenInspector checks backend bearer tokens. The backend is the authority;
// the dashboard only refuses tokens it can prove are unusable.
type TokenInspector struct {
	secret []byte
	now    func() time.Time
}

// NewTokenInspector creates an inspector. An empty secret means tokens are
// parsed without signature verification.
func NewTokenInspector(secret []byte) *TokenInspector {
	return &TokenInspector{secret: secret, now: time.Now}
}

// Inspect validates the token and returns its claims.
//
// With a secret, the token must be a valid HS256 JWT. Without one, non-JWT
// tokens are accepted as opaque and JWTs are rejected only when expired.
func (v *TokenInspector) Inspect(tokenString string) (*TokenInfo, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	if len(v.secret) > 0 {
		return v.verify(tokenString)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return &TokenInfo{Opaque: true}, nil
	}
	info := infoFromClaims(claims)
	if !info.ExpiresAt.IsZero() && !v.now().Before(info.ExpiresAt) {
		return nil, ErrExpiredToken
	}
	return info, nil
}

func (v *TokenInspector) verify(tokenString string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return infoFromClaims(claims), nil
}

func infoFromClaims(claims jwt.MapClaims) *TokenInfo {
	info := &TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info
}
