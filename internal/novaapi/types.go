// ABOUTME: Wire types exchanged with the Nova backend REST API
// ABOUTME: Users, business profiles, leads, conversations, metrics and payment payloads

package novaapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// User is the account record returned by login.
type User struct {
	ID            ID     `json:"id"`
	Email         string `json:"email"`
	BusinessName  string `json:"business_name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

// LoginResult carries the bearer token and the user record. RawUser keeps the
// record exactly as the backend sent it.
type LoginResult struct {
	Token   string
	User    User
	RawUser json.RawMessage
}

// SignupResult is returned by a successful signup. ExchangeToken is a
// one-time token the dashboard redeems after email verification; it is
// empty when the backend does not issue one.
type SignupResult struct {
	ExchangeToken string `json:"exchange_token"`
}

// BusinessProfile is the server-held agent configuration.
type BusinessProfile struct {
	UserID              ID     `json:"user_id,omitempty"`
	AgentName           string `json:"agent_name"`
	BusinessName        string `json:"business_name"`
	BusinessDescription string `json:"business_description"`
	PersonalityType     string `json:"personality_type"`
}

// ProfileUpdate is the body of PUT /business-profile.
type ProfileUpdate struct {
	AgentName           string `json:"agent_name"`
	BusinessName        string `json:"business_name"`
	BusinessDescription string `json:"business_description"`
	PersonalityType     string `json:"personality_type"`
}

// OnboardRequest is the body of POST /onboard.
type OnboardRequest struct {
	AgentName           string `json:"agent_name"`
	BusinessDescription string `json:"business_description"`
	PersonalityType     string `json:"personality_type"`
}

// TestConfig is the body of POST /set-test-config.
type TestConfig struct {
	AgentName           string `json:"agent_name"`
	BusinessName        string `json:"business_name"`
	BusinessDescription string `json:"business_description"`
	PersonalityType     string `json:"personality_type"`
}

// Lead is a contact captured by the widget.
type Lead struct {
	ID            ID        `json:"id"`
	SessionID     string    `json:"session_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	Intent        string    `json:"intent"`
	Timestamp     Timestamp `json:"timestamp"`
}

// Conversation is a widget chat session.
type Conversation struct {
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	StartedAt    Timestamp `json:"started_at"`
	LastActivity Timestamp `json:"last_activity"`
	Messages     []Message `json:"messages,omitempty"`
}

// Message is one turn of a conversation transcript.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

// Metrics are the server-computed aggregates.
type Metrics struct {
	TotalConversations int     `json:"total_conversations"`
	TotalLeads         int     `json:"total_leads"`
	CaptureRate        float64 `json:"capture_rate"`
	AvgTTFRMs          float64 `json:"avg_ttfr_ms"`
}

// ID accepts both string and numeric identifiers.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Timestamp accepts RFC 3339 times, ISO 8601 offsets without a colon, the
// zone-less form the backend emits for naive datetimes (taken as UTC) and
// epoch milliseconds. Anything else decodes to the zero time so one bad row
// does not fail a whole list.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999-07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.Time = time.Time{}
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return nil
	}
	if !strings.HasPrefix(raw, `"`) {
		if ms, err := strconv.ParseFloat(raw, 64); err == nil {
			t.Time = time.UnixMilli(int64(ms)).UTC()
		}
		return nil
	}

	s := strings.Trim(raw, `"`)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
