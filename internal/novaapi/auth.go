// ABOUTME: Account endpoints: login, signup, email verification and password reset
// ABOUTME: Also redeems the one-time signup exchange token issued at signup

package novaapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

type loginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

func (r *loginResponse) result(op string) (*LoginResult, error) {
	if r.Token == "" {
		return nil, &Error{Op: op, Kind: KindTransport, Status: http.StatusOK, Err: errors.New("response is missing a token")}
	}
	res := &LoginResult{Token: r.Token, RawUser: r.User}
	if len(r.User) > 0 {
		if err := json.Unmarshal(r.User, &res.User); err != nil {
			return nil, &Error{Op: op, Kind: KindTransport, Status: http.StatusOK, Err: err}
		}
	}
	return res, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.doJSON(ctx, "Login", http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.result("Login")
}

// Signup creates an account. The account is unusable until the emailed
// verification link is followed.
func (c *Client) Signup(ctx context.Context, email, password, businessName string) (*SignupResult, error) {
	var resp SignupResult
	err := c.doJSON(ctx, "Signup", http.MethodPost, "/auth/signup", "", map[string]string{
		"email":         email,
		"password":      password,
		"business_name": businessName,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RedeemExchange trades a signup exchange token for a session after the
// account has been verified. The backend accepts each token once.
func (c *Client) RedeemExchange(ctx context.Context, exchangeToken string) (*LoginResult, error) {
	var resp loginResponse
	err := c.doJSON(ctx, "RedeemExchange", http.MethodPost, "/auth/exchange", "", map[string]string{
		"exchange_token": exchangeToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.result("RedeemExchange")
}

// VerifyEmail confirms an email address using the token from the emailed link.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.doJSON(ctx, "VerifyEmail", http.MethodGet, "/auth/verify-email?token="+url.QueryEscape(token), "", nil, nil)
}

// ResendVerification sends a fresh verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.doJSON(ctx, "ResendVerification", http.MethodPost, "/auth/resend-verification", "", map[string]string{
		"email": email,
	}, nil)
}

// RequestPasswordReset asks the backend to email a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.doJSON(ctx, "RequestPasswordReset", http.MethodPost, "/auth/request-password-reset", "", map[string]string{
		"email": email,
	}, nil)
}

// ResetPassword sets a new password using the token from the emailed link.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.doJSON(ctx, "ResetPassword", http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token":        token,
		"new_password": newPassword,
	}, nil)
}
