// ABOUTME: Read-only data endpoints: leads, conversations, transcripts and metrics
// ABOUTME: List pages filter and sort these locally after fetching

package novaapi

import (
	"context"
	"net/http"
	"net/url"
)

// ListLeads returns every lead for the caller.
func (c *Client) ListLeads(ctx context.Context, token string) ([]Lead, error) {
	var resp struct {
		Leads []Lead `json:"leads"`
	}
	if err := c.doJSON(ctx, "ListLeads", http.MethodGet, "/leads", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Leads == nil {
		return []Lead{}, nil
	}
	return resp.Leads, nil
}

// ListConversations returns every conversation for the caller, without messages.
func (c *Client) ListConversations(ctx context.Context, token string) ([]Conversation, error) {
	var resp struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.doJSON(ctx, "ListConversations", http.MethodGet, "/conversations", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Conversations == nil {
		return []Conversation{}, nil
	}
	return resp.Conversations, nil
}

// GetConversation returns one conversation with its transcript.
func (c *Client) GetConversation(ctx context.Context, token, sessionID string) (*Conversation, error) {
	var resp struct {
		Conversation *Conversation `json:"conversation"`
	}
	path := "/conversations/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, "GetConversation", http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Conversation == nil {
		return nil, &Error{Op: "GetConversation", Kind: KindNotFoundOrStale, Status: http.StatusOK}
	}
	return resp.Conversation, nil
}

// GetMetrics returns the caller's aggregates.
func (c *Client) GetMetrics(ctx context.Context, token string) (*Metrics, error) {
	var m Metrics
	if err := c.doJSON(ctx, "GetMetrics", http.MethodGet, "/metrics", token, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
