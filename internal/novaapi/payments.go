// ABOUTME: Payment initialization endpoint
// ABOUTME: Returns the hosted checkout URL the browser is redirected to

package novaapi

import (
	"context"
	"errors"
	"net/http"
)

// Currency is the only currency plans are sold in.
const Currency = "NGN"

// InitializePayment starts a checkout for plan and returns the provider's
// authorization URL.
func (c *Client) InitializePayment(ctx context.Context, token, plan, email string) (string, error) {
	var resp struct {
		AuthorizationURL string `json:"authorization_url"`
	}
	err := c.doJSON(ctx, "InitializePayment", http.MethodPost, "/payments/initialize", token, map[string]string{
		"plan":     plan,
		"email":    email,
		"currency": Currency,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AuthorizationURL == "" {
		return "", &Error{Op: "InitializePayment", Kind: KindTransport, Status: http.StatusOK, Err: errors.New("response is missing authorization_url")}
	}
	return resp.AuthorizationURL, nil
}
