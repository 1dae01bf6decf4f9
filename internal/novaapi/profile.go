// ABOUTME: Business profile, onboarding, test-config and document extraction endpoints
// ABOUTME: Profile reads drive the onboarding gate; writes come from onboarding, settings and test agent

package novaapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// GetBusinessProfile returns the caller's profile, or nil when the backend
// reports none.
func (c *Client) GetBusinessProfile(ctx context.Context, token string) (*BusinessProfile, error) {
	var resp struct {
		Profile *BusinessProfile `json:"profile"`
	}
	if err := c.doJSON(ctx, "GetBusinessProfile", http.MethodGet, "/business-profile", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

// UpdateBusinessProfile replaces the caller's profile.
func (c *Client) UpdateBusinessProfile(ctx context.Context, token string, update ProfileUpdate) error {
	return c.doJSON(ctx, "UpdateBusinessProfile", http.MethodPut, "/business-profile", token, update, nil)
}

// Onboard submits the completed onboarding draft.
func (c *Client) Onboard(ctx context.Context, token string, req OnboardRequest) error {
	return c.doJSON(ctx, "Onboard", http.MethodPost, "/onboard", token, req, nil)
}

// SetTestConfig stages a configuration for the test-mode widget without
// touching the live agent.
func (c *Client) SetTestConfig(ctx context.Context, token string, cfg TestConfig) error {
	return c.doJSON(ctx, "SetTestConfig", http.MethodPost, "/set-test-config", token, cfg, nil)
}

// ExtractBusinessInfo uploads a document and returns the text the backend
// extracted from it.
func (c *Client) ExtractBusinessInfo(ctx context.Context, token, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", &Error{Op: "ExtractBusinessInfo", Kind: KindTransport, Err: fmt.Errorf("building form: %w", err)}
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", &Error{Op: "ExtractBusinessInfo", Kind: KindTransport, Err: fmt.Errorf("reading upload: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return "", &Error{Op: "ExtractBusinessInfo", Kind: KindTransport, Err: fmt.Errorf("closing form: %w", err)}
	}

	var resp struct {
		ExtractedText string `json:"extracted_text"`
	}
	err = c.do(ctx, call{
		op:          "ExtractBusinessInfo",
		method:      http.MethodPost,
		path:        "/extract-business-info",
		token:       token,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ExtractedText, nil
}
