// ABOUTME: Handlers for the onboarding wizard
// ABOUTME: Every POST redirects back to the wizard so a refresh never resubmits

package webui

import (
	"errors"
	"net/http"

	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/onboarding"
)

var (
	errNoUpload          = errors.New("no file uploaded")
	errUnsupportedUpload = errors.New("unsupported document type")
)

type onboardingData struct {
	Wizard            onboarding.Wizard
	Steps             []onboarding.Step
	Personalities     []onboarding.PersonalityInfo
	MinLength         int
	DescriptionLength int
}

func (ui *UI) handleOnboardingPage(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	if !ui.gate.Check(r.Context(), id.SessionID, id.Token).NeedsOnboarding {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	var snapshot onboarding.Wizard
	_ = ui.drafts.With(id.SessionID, func(wz *onboarding.Wizard) error {
		snapshot = *wz
		return nil
	})

	d := onboardingData{
		Wizard:            snapshot,
		Steps:             onboarding.Steps(),
		Personalities:     onboarding.Personalities(),
		MinLength:         onboarding.MinDescriptionLength,
		DescriptionLength: len([]rune(snapshot.Draft.BusinessDescription)),
	}
	ui.render(w, http.StatusOK, "onboarding", ui.newPage(r, "Set Up Nova", "", d))
}

func (ui *UI) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	action := onboarding.Action(r.FormValue("action"))

	var done bool
	err := ui.drafts.With(id.SessionID, func(wz *onboarding.Wizard) error {
		updateDraft(wz, r)
		var err error
		if action == onboarding.ActionSubmit {
			err = wz.Submit(r.Context(), ui.backend, id.Token)
		} else {
			err = wz.Apply(action)
		}
		done = wz.Done()
		return err
	})
	if err != nil {
		ui.logger.Debug("onboarding step rejected", "action", action, "error", err)
	}

	if done {
		ui.gate.MarkOnboarded(id.SessionID)
		ui.logger.Info("onboarding completed", "user_id", id.UserID)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
}

// updateDraft copies the fields the current step shows into the draft.
func updateDraft(wz *onboarding.Wizard, r *http.Request) {
	switch wz.Step.(type) {
	case onboarding.DescriptionStep:
		wz.Draft.BusinessDescription = r.FormValue("business_description")
	case onboarding.KnowledgeBaseStep:
		wz.SetKnowledgeBaseURLs(r.Form["kb_url"])
	case onboarding.IdentityStep:
		wz.Draft.AgentName = r.FormValue("agent_name")
		if p, ok := onboarding.ParsePersonality(r.FormValue("personality_type")); ok {
			wz.Draft.PersonalityType = p
		}
	}
}

func (ui *UI) handleOnboardingUpload(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	text, err := ui.extractUpload(r, id.Token)

	_ = ui.drafts.With(id.SessionID, func(wz *onboarding.Wizard) error {
		if _, ok := wz.Step.(onboarding.DescriptionStep); !ok {
			return nil
		}
		if errors.Is(err, errNoUpload) || errors.Is(err, errUnsupportedUpload) {
			wz.Error = onboarding.MsgUnsupportedFile
			return nil
		}
		wz.ApplyExtraction(text, err)
		return nil
	})
	http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
}

// extractUpload sends the request's "file" part for text extraction.
func (ui *UI) extractUpload(r *http.Request, token string) (string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", errNoUpload
	}
	defer file.Close()

	if !onboarding.AcceptUpload(header.Filename) {
		return "", errUnsupportedUpload
	}
	text, err := ui.backend.ExtractBusinessInfo(r.Context(), token, header.Filename, file)
	if err != nil {
		ui.logger.Warn("document extraction failed", "filename", header.Filename, "error", err)
		return "", err
	}
	return text, nil
}
