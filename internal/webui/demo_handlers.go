// ABOUTME: Handlers for the public demo: staged config, preview, turn counting and the signup modal
// ABOUTME: Widget messages relayed by the page are fanned out to the tab's event stream

package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/2389/nova-dashboard/internal/authflow"
	"github.com/2389/nova-dashboard/internal/demo"
	"github.com/2389/nova-dashboard/internal/form"
	"github.com/2389/nova-dashboard/internal/onboarding"
	"github.com/2389/nova-dashboard/internal/session"
	"github.com/2389/nova-dashboard/internal/widget"
)

type demoData struct {
	Config        demo.Config
	Personalities []onboarding.PersonalityInfo
	Saved         bool
	PreviewURL    string
	Turns         int
	Limit         int

	// Signup modal state.
	SignupOpen  bool
	SignupSent  bool
	SignupEmail string
	SignupError string
}

// demoPage loads the tab's staged state into a page model.
func (ui *UI) demoPage(r *http.Request) demoData {
	d := demoData{
		Config:        demo.DefaultConfig(),
		Personalities: onboarding.Personalities(),
		Limit:         demo.TurnLimit,
	}
	tab := tabID(r)
	cfg, err := ui.sandbox.Load(r.Context(), tab)
	if err != nil {
		ui.logger.Error("failed to load demo config", "error", err)
	}
	if cfg != nil {
		d.Config = *cfg
		d.Saved = true
	}
	if d.Turns, err = ui.sandbox.Turns(r.Context(), tab); err != nil {
		ui.logger.Error("failed to load demo turns", "error", err)
	}
	return d
}

func (ui *UI) renderDemo(w http.ResponseWriter, r *http.Request, status int, d demoData, toast string, isError bool) {
	p := ui.newPage(r, "Nova Demo - Test AI Support Agent for Free", "", d)
	if toast != "" {
		p.toast(toast, isError)
	}
	ui.render(w, status, "demo", p)
}

func (ui *UI) handleDemoPage(w http.ResponseWriter, r *http.Request) {
	ui.renderDemo(w, r, http.StatusOK, ui.demoPage(r), "", false)
}

func (ui *UI) handleDemoConfig(w http.ResponseWriter, r *http.Request) {
	cfg := demo.Config{
		AgentName:           r.FormValue("agent_name"),
		BusinessName:        strings.TrimSpace(r.FormValue("business_name")),
		BusinessDescription: r.FormValue("business_description"),
		PersonalityType:     string(onboarding.Friendly),
	}
	if p, ok := onboarding.ParsePersonality(r.FormValue("personality_type")); ok {
		cfg.PersonalityType = string(p)
	}

	err := ui.sandbox.Save(r.Context(), tabID(r), cfg)
	if v, ok := form.AsValidation(err); ok {
		d := ui.demoPage(r)
		d.Config = cfg
		ui.renderDemo(w, r, http.StatusUnprocessableEntity, d, "❌ "+v.Message, true)
		return
	}
	if err != nil {
		ui.logger.Error("failed to save demo config", "error", err)
		ui.renderDemo(w, r, http.StatusInternalServerError, ui.demoPage(r), "❌ "+session.MsgTryAgain, true)
		return
	}
	ui.renderDemo(w, r, http.StatusOK, ui.demoPage(r), "✅ "+demo.MsgSaved, false)
}

func (ui *UI) handleDemoStart(w http.ResponseWriter, r *http.Request) {
	url, err := ui.sandbox.Start(r.Context(), tabID(r))
	d := ui.demoPage(r)
	if v, ok := form.AsValidation(err); ok {
		ui.renderDemo(w, r, http.StatusOK, d, "❌ "+v.Message, true)
		return
	}
	if err != nil {
		ui.logger.Error("failed to start demo preview", "error", err)
		ui.renderDemo(w, r, http.StatusInternalServerError, d, "❌ "+session.MsgTryAgain, true)
		return
	}
	d.PreviewURL = url
	ui.renderDemo(w, r, http.StatusOK, d, "🎬 "+demo.MsgPreviewLoaded, false)
}

// handleDemoReset clears the staged config and turn count. The form keeps
// the values that were staged so the visitor can edit them.
func (ui *UI) handleDemoReset(w http.ResponseWriter, r *http.Request) {
	d := ui.demoPage(r)
	if err := ui.sandbox.Reset(r.Context(), tabID(r)); err != nil {
		ui.logger.Error("failed to reset demo config", "error", err)
		ui.renderDemo(w, r, http.StatusInternalServerError, d, "❌ "+session.MsgTryAgain, true)
		return
	}
	d.Saved = false
	d.Turns = 0
	ui.renderDemo(w, r, http.StatusOK, d, "", false)
}

// handleDemoSignup creates an account from the demo's signup modal. The
// modal stays open and shows either the error or the verification notice.
func (ui *UI) handleDemoSignup(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	businessName := strings.TrimSpace(r.FormValue("business_name"))

	d := ui.demoPage(r)
	d.SignupOpen = true
	d.SignupEmail = email
	if businessName == "" {
		businessName = d.Config.BusinessName
	}

	if v := authflow.ValidateSignup(email, password, businessName); v != nil {
		d.SignupError = v.Message
		ui.renderDemo(w, r, http.StatusUnprocessableEntity, d, "", false)
		return
	}
	res := ui.sessions.Signup(r.Context(), tabID(r), email, password, businessName)
	if !res.Success {
		d.SignupError = res.Error
		ui.renderDemo(w, r, http.StatusBadRequest, d, "", false)
		return
	}
	d.SignupSent = true
	ui.renderDemo(w, r, http.StatusOK, d, "", false)
}

type turnResponse struct {
	Turns        int  `json:"turns"`
	Limit        int  `json:"limit"`
	LimitReached bool `json:"limit_reached"`
}

// recordTurn counts a preview message and, at the limit, tells the tab's
// stream to open the signup modal.
func (ui *UI) recordTurn(r *http.Request) (turnResponse, error) {
	tab := tabID(r)
	turns, limitReached, err := ui.sandbox.RecordTurn(r.Context(), tab)
	if err != nil {
		return turnResponse{}, err
	}
	if limitReached {
		ui.events.Publish(tab, widget.Event{Type: widget.EventOpenSignup, Source: "server", At: ui.now()})
	}
	return turnResponse{Turns: turns, Limit: demo.TurnLimit, LimitReached: limitReached}, nil
}

func (ui *UI) handleDemoTurn(w http.ResponseWriter, r *http.Request) {
	resp, err := ui.recordTurn(r)
	if err != nil {
		ui.logger.Error("failed to record demo turn", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record turn"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDemoEvent accepts a message the page relayed from the widget frame.
func (ui *UI) handleDemoEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := widget.DecodeEvent(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, widget.ErrUnknownEvent) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	ev.Source = "widget"

	switch ev.Type {
	case widget.EventDemoTurn:
		resp, err := ui.recordTurn(r)
		if err != nil {
			ui.logger.Error("failed to record demo turn", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record turn"})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		ui.events.Publish(tabID(r), ev)
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleDemoStream streams widget events for the caller's tab as
// server-sent events.
func (ui *UI) handleDemoStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	tab := tabID(r)
	events, subID := ui.events.Subscribe(r.Context(), tab)
	defer ui.events.Unsubscribe(tab, subID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(ui.cfg.StreamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				ui.logger.Error("failed to marshal widget event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
