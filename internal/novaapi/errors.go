// ABOUTME: Uniform error type for Nova backend calls
// ABOUTME: Classifies failures into validation, authentication, transport, not-found and server kinds

package novaapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindTransport covers network failures and undecodable responses.
	KindTransport Kind = iota + 1
	// KindValidation is a 400/422 rejection of the submitted data.
	KindValidation
	// KindAuthentication is a 401/403: bad credentials or an unusable token.
	KindAuthentication
	// KindNotFoundOrStale is a 404/410, typically an expired or reused link token.
	KindNotFoundOrStale
	// KindServer is any other non-2xx status.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindNotFoundOrStale:
		return "not_found_or_stale"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method that fails.
type Error struct {
	Op     string // client operation, e.g. "Login"
	Kind   Kind
	Status int    // HTTP status, 0 for transport failures
	Detail string // server-supplied message, if any
	Err    error  // underlying transport or decode error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("novaapi %s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("novaapi %s: %s (status %d): %s", e.Op, e.Kind, e.Status, e.Detail)
	default:
		return fmt.Sprintf("novaapi %s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the server detail when present, otherwise fallback.
func (e *Error) Message(fallback string) string {
	if e != nil && e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsTransport reports whether err is a network or decode failure.
func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}

// MessageOf returns the server detail carried by err, or fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	return fallback
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthentication
	case http.StatusNotFound, http.StatusGone:
		return KindNotFoundOrStale
	default:
		return KindServer
	}
}

// parseDetail extracts the "detail" field from an error body. The backend
// sends either a string or, for schema validation failures, a list of
// objects carrying "msg".
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
