// ABOUTME: Handlers for the agent profile pages: settings, test agent and pricing
// ABOUTME: Settings and test agent share one form model mirroring the business profile

package webui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/billing"
	"github.com/2389/nova-dashboard/internal/form"
	"github.com/2389/nova-dashboard/internal/novaapi"
	"github.com/2389/nova-dashboard/internal/onboarding"
	"github.com/2389/nova-dashboard/internal/widget"
)

// Toasts for the profile pages.
const (
	msgProfileLoadFailed = "Failed to load profile"
	msgChangesSaved      = "✅ Changes saved successfully!"
	msgSaveChangesFailed = "Failed to save changes: "
	msgPreviewLoading    = "🔄 Configuration Set! Preview is loading"
	msgPreviewFailed     = "❌ Failed to load preview"
	msgConfigSaved       = "✅ Configuration saved!"
	msgConfigSaveFailed  = "❌ Failed to save"
	msgUploaded          = "✅ Document uploaded successfully"
	msgUploadFailed      = "❌ Upload failed"
	msgCheckoutFailed    = "Failed to start checkout. Please try again."
)

// agentForm is the editable business profile.
type agentForm struct {
	AgentName           string
	BusinessName        string
	BusinessDescription string
	PersonalityType     onboarding.Personality
}

func formFromProfile(p *novaapi.BusinessProfile) agentForm {
	f := agentForm{AgentName: onboarding.DefaultAgentName, PersonalityType: onboarding.Friendly}
	if p == nil {
		return f
	}
	if p.AgentName != "" {
		f.AgentName = p.AgentName
	}
	f.BusinessName = p.BusinessName
	f.BusinessDescription = p.BusinessDescription
	if pt, ok := onboarding.ParsePersonality(p.PersonalityType); ok {
		f.PersonalityType = pt
	}
	return f
}

func formFromRequest(r *http.Request) agentForm {
	f := agentForm{
		AgentName:           strings.TrimSpace(r.FormValue("agent_name")),
		BusinessName:        strings.TrimSpace(r.FormValue("business_name")),
		BusinessDescription: r.FormValue("business_description"),
		PersonalityType:     onboarding.Friendly,
	}
	if f.AgentName == "" {
		f.AgentName = onboarding.DefaultAgentName
	}
	if pt, ok := onboarding.ParsePersonality(r.FormValue("personality_type")); ok {
		f.PersonalityType = pt
	}
	return f
}

func (f agentForm) update() novaapi.ProfileUpdate {
	return novaapi.ProfileUpdate{
		AgentName:           f.AgentName,
		BusinessName:        f.BusinessName,
		BusinessDescription: f.BusinessDescription,
		PersonalityType:     string(f.PersonalityType),
	}
}

type settingsData struct {
	Form          agentForm
	Personalities []onboarding.PersonalityInfo
	Snippet       string
	Error         string
}

func (ui *UI) settingsPage(r *http.Request, f agentForm, userID string) settingsData {
	id := auth.MustFromContext(r.Context())
	if userID == "" {
		userID = id.UserID
	}
	return settingsData{
		Form:          f,
		Personalities: onboarding.Personalities(),
		Snippet:       widget.Snippet(userID, f.BusinessName, ui.cfg.APIURL, ui.cfg.WidgetURL),
	}
}

func (ui *UI) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	profile, err := ui.backend.GetBusinessProfile(r.Context(), id.Token)
	if err != nil {
		ui.logger.Warn("failed to load profile", "kind", novaapi.KindOf(err), "error", err)
	}
	var userID string
	if profile != nil {
		userID = string(profile.UserID)
	}

	d := ui.settingsPage(r, formFromProfile(profile), userID)
	if err != nil {
		d.Error = msgProfileLoadFailed
	}
	ui.render(w, http.StatusOK, "settings", ui.newPage(r, "Settings", "settings", d))
}

func (ui *UI) handleSettings(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	f := formFromRequest(r)

	if err := ui.saveProfile(r, id, f); err != nil {
		p := ui.newPage(r, "Settings", "settings", ui.settingsPage(r, f, ""))
		ui.render(w, http.StatusOK, "settings", p.toast(msgSaveChangesFailed+novaapi.MessageOf(err, "unknown error"), true))
		return
	}
	p := ui.newPage(r, "Settings", "settings", ui.settingsPage(r, f, ""))
	ui.render(w, http.StatusOK, "settings", p.toast(msgChangesSaved, false))
}

// handleSettingsUpload fills the description from a document without saving.
func (ui *UI) handleSettingsUpload(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	f := formFromRequest(r)

	text, err := ui.extractUpload(r, id.Token)
	if err == nil {
		f.BusinessDescription = text
	}
	p := ui.newPage(r, "Settings", "settings", ui.settingsPage(r, f, ""))
	if err != nil {
		p.toast(uploadError(err), true)
	}
	ui.render(w, http.StatusOK, "settings", p)
}

// saveProfile writes the profile and refreshes the name shown in the shell.
func (ui *UI) saveProfile(r *http.Request, id *auth.Identity, f agentForm) error {
	if err := ui.backend.UpdateBusinessProfile(r.Context(), id.Token, f.update()); err != nil {
		ui.logger.Warn("failed to save profile", "kind", novaapi.KindOf(err), "error", err)
		return err
	}
	if err := ui.sessions.SetBusinessName(r.Context(), id.SessionID, f.BusinessName); err != nil {
		ui.logger.Error("failed to update session business name", "error", err)
	}
	id.BusinessName = f.BusinessName
	return nil
}

func uploadError(err error) string {
	if errors.Is(err, errNoUpload) || errors.Is(err, errUnsupportedUpload) {
		return onboarding.MsgUnsupportedFile
	}
	return msgUploadFailed
}

type testAgentData struct {
	Form          agentForm
	Personalities []onboarding.PersonalityInfo
	PreviewURL    string
	Error         string
}

func (ui *UI) renderTestAgent(w http.ResponseWriter, r *http.Request, d testAgentData, toast string, isError bool) {
	d.Personalities = onboarding.Personalities()
	p := ui.newPage(r, "Test Agent", "test-agent", d)
	if toast != "" {
		p.toast(toast, isError)
	}
	ui.render(w, http.StatusOK, "test_agent", p)
}

func (ui *UI) handleTestAgentPage(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	profile, err := ui.backend.GetBusinessProfile(r.Context(), id.Token)
	d := testAgentData{Form: formFromProfile(profile)}
	if err != nil {
		ui.logger.Warn("failed to load profile", "kind", novaapi.KindOf(err), "error", err)
		d.Error = msgProfileLoadFailed
	}
	ui.renderTestAgent(w, r, d, "", false)
}

// handleTestAgentConfig stages the form as the preview configuration and
// shows the widget in test mode.
func (ui *UI) handleTestAgentConfig(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	f := formFromRequest(r)

	err := ui.backend.SetTestConfig(r.Context(), id.Token, novaapi.TestConfig(f.update()))
	if err != nil {
		ui.logger.Warn("failed to set test config", "kind", novaapi.KindOf(err), "error", err)
		ui.renderTestAgent(w, r, testAgentData{Form: f}, msgPreviewFailed, true)
		return
	}
	d := testAgentData{Form: f, PreviewURL: widget.TestURL(ui.cfg.WidgetURL)}
	ui.renderTestAgent(w, r, d, msgPreviewLoading, false)
}

func (ui *UI) handleTestAgentSave(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	f := formFromRequest(r)

	if err := ui.saveProfile(r, id, f); err != nil {
		ui.renderTestAgent(w, r, testAgentData{Form: f}, msgConfigSaveFailed, true)
		return
	}
	ui.renderTestAgent(w, r, testAgentData{Form: f}, msgConfigSaved, false)
}

func (ui *UI) handleTestAgentUpload(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	f := formFromRequest(r)

	text, err := ui.extractUpload(r, id.Token)
	if err != nil {
		ui.renderTestAgent(w, r, testAgentData{Form: f}, uploadError(err), true)
		return
	}
	f.BusinessDescription = text
	ui.renderTestAgent(w, r, testAgentData{Form: f}, msgUploaded, false)
}

type pricingData struct {
	Plans    []billing.Plan
	SignedIn bool
}

func (ui *UI) renderPricing(w http.ResponseWriter, r *http.Request, status int, toast string) {
	d := pricingData{
		Plans:    billing.Plans(),
		SignedIn: auth.FromContext(r.Context()) != nil,
	}
	p := ui.newPage(r, "Pricing", "pricing", d)
	if toast != "" {
		p.toast(toast, true)
	}
	ui.render(w, status, "pricing", p)
}

func (ui *UI) handlePricing(w http.ResponseWriter, r *http.Request) {
	ui.renderPricing(w, r, http.StatusOK, "")
}

// handleCheckout starts a hosted checkout and hands the browser to it.
func (ui *UI) handleCheckout(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	planID := r.FormValue("plan")

	url, err := billing.Checkout(r.Context(), ui.backend, id.Token, planID, id.Email)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			ui.renderPricing(w, r, http.StatusBadRequest, "Unknown plan")
			return
		}
		if v, ok := form.AsValidation(err); ok {
			ui.renderPricing(w, r, http.StatusUnprocessableEntity, v.Message)
			return
		}
		ui.logger.Warn("checkout failed", "plan", planID, "kind", novaapi.KindOf(err), "error", err)
		ui.renderPricing(w, r, http.StatusBadGateway, msgCheckoutFailed)
		return
	}

	ui.logger.Info("checkout started", "plan", planID, "user_id", id.UserID)
	http.Redirect(w, r, url, http.StatusSeeOther)
}
