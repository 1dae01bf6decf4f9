// ABOUTME: Typed events relayed from the embedded widget frame to the dashboard
// ABOUTME: Declares the message schema and rejects anything outside it

package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// EventType names a widget message.
type EventType string

const (
	// EventOpenSignup asks the host page to open the signup modal.
	EventOpenSignup EventType = "NOVA_OPEN_SIGNUP"
	// EventDemoTurn reports that the visitor sent a demo message.
	EventDemoTurn EventType = "NOVA_DEMO_TURN"
)

// ErrUnknownEvent is returned for a message whose type is not declared.
var ErrUnknownEvent = errors.New("unknown widget event")

// maxEventSize bounds a decoded event body.
const maxEventSize = 4 << 10

// Event is one message from the widget.
type Event struct {
	Type   EventType `json:"type"`
	Source string    `json:"source,omitempty"` // "widget" when relayed from the frame, "server" otherwise
	At     time.Time `json:"at"`
}

// Valid reports whether the event type is declared.
func (t EventType) Valid() bool {
	switch t {
	case EventOpenSignup, EventDemoTurn:
		return true
	}
	return false
}

// DecodeEvent reads one event. Unknown fields are ignored; unknown types
// are rejected.
func DecodeEvent(r io.Reader) (Event, error) {
	var ev Event
	if err := json.NewDecoder(io.LimitReader(r, maxEventSize)).Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("decoding widget event: %w", err)
	}
	if !ev.Type.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	return ev, nil
}
