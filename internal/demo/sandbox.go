// ABOUTME: Public demo sandbox: stages an agent configuration per browser tab
// ABOUTME: Nothing reaches the backend until the visitor signs up; previews are capped at four messages

package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/2389/nova-dashboard/internal/form"
	"github.com/2389/nova-dashboard/internal/store"
	"github.com/2389/nova-dashboard/internal/widget"
)

// TurnLimit is the number of preview messages a visitor may send.
const TurnLimit = 4

// Messages shown on the demo page.
const (
	MsgConfigRequired = "Please fill in business name and description"
	MsgSaveFirst      = "Please save your configuration first"
	MsgSaved          = `Configuration saved! Click "Start Testing" below.`
	MsgPreviewLoaded  = "Demo Preview Loaded!"
)

// Config is the visitor's draft agent configuration.
type Config struct {
	AgentName           string `json:"agent_name"`
	BusinessName        string `json:"business_name"`
	BusinessDescription string `json:"business_description"`
	PersonalityType     string `json:"personality_type"`
	Timestamp           int64  `json:"timestamp"` // unix milliseconds when saved
}

// Validate requires a business name and description.
func (c *Config) Validate() *form.ValidationError {
	if form.Blank(c.BusinessName, c.BusinessDescription) {
		return form.Invalid("", MsgConfigRequired)
	}
	return nil
}

// DefaultConfig is the form's starting state.
func DefaultConfig() Config {
	return Config{AgentName: "Nova", PersonalityType: "friendly"}
}

// Sandbox stages demo state in tab-scoped handoffs.
type Sandbox struct {
	handoffs  store.HandoffStore
	ttl       time.Duration
	widgetURL string
	now       func() time.Time
	logger    *slog.Logger
}

// NewSandbox creates a sandbox. Staged values expire after ttl.
func NewSandbox(handoffs store.HandoffStore, ttl time.Duration, widgetURL string, logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sandbox{
		handoffs:  handoffs,
		ttl:       ttl,
		widgetURL: widgetURL,
		now:       time.Now,
		logger:    logger.With("component", "demo"),
	}
}

// Save stages cfg for the tab and resets its turn counter.
func (s *Sandbox) Save(ctx context.Context, tabID string, cfg Config) error {
	cfg.AgentName = strings.TrimSpace(cfg.AgentName)
	if cfg.AgentName == "" {
		cfg.AgentName = "Nova"
	}
	if v := cfg.Validate(); v != nil {
		return v
	}

	now := s.now()
	cfg.Timestamp = now.UnixMilli()
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding demo config: %w", err)
	}
	if err := s.put(ctx, tabID, store.HandoffDemoConfig, payload, now); err != nil {
		return err
	}
	return s.put(ctx, tabID, store.HandoffDemoTurns, []byte("0"), now)
}

// Load returns the tab's staged config, or nil when there is none.
func (s *Sandbox) Load(ctx context.Context, tabID string) (*Config, error) {
	h, err := s.handoffs.GetHandoff(ctx, tabID, store.HandoffDemoConfig)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrExpired) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(h.Payload, &cfg); err != nil {
		s.logger.Warn("discarding unreadable demo config", "error", err)
		return nil, nil
	}
	return &cfg, nil
}

// Reset discards the tab's staged config and turn count so the visitor can
// edit the configuration again.
func (s *Sandbox) Reset(ctx context.Context, tabID string) error {
	for _, kind := range []store.HandoffKind{store.HandoffDemoConfig, store.HandoffDemoTurns} {
		if err := s.handoffs.DeleteHandoff(ctx, tabID, kind); err != nil {
			return err
		}
	}
	return nil
}

// Start returns the preview URL once a config has been saved.
func (s *Sandbox) Start(ctx context.Context, tabID string) (string, error) {
	cfg, err := s.Load(ctx, tabID)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		return "", form.Invalid("", MsgSaveFirst)
	}
	return widget.DemoURL(s.widgetURL), nil
}

// Turns returns how many preview messages the tab has sent.
func (s *Sandbox) Turns(ctx context.Context, tabID string) (int, error) {
	h, err := s.handoffs.GetHandoff(ctx, tabID, store.HandoffDemoTurns)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrExpired) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(string(h.Payload))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// RecordTurn counts one preview message. limitReached is true once the
// count reaches TurnLimit; the count does not grow past it.
func (s *Sandbox) RecordTurn(ctx context.Context, tabID string) (turns int, limitReached bool, err error) {
	turns, err = s.Turns(ctx, tabID)
	if err != nil {
		return 0, false, err
	}
	if turns < TurnLimit {
		turns++
		if err := s.put(ctx, tabID, store.HandoffDemoTurns, []byte(strconv.Itoa(turns)), s.now()); err != nil {
			return 0, false, err
		}
	}
	return turns, turns >= TurnLimit, nil
}

func (s *Sandbox) put(ctx context.Context, tabID string, kind store.HandoffKind, payload []byte, now time.Time) error {
	return s.handoffs.PutHandoff(ctx, &store.Handoff{
		TabID:     tabID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
}
