// ABOUTME: Onboarding wizard modelled as explicit steps with a transition table
// ABOUTME: Collects business description, optional knowledge-base links and agent identity

package onboarding

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/2389/nova-dashboard/internal/form"
	"github.com/2389/nova-dashboard/internal/novaapi"
)

// MinDescriptionLength is the shortest business description accepted.
const MinDescriptionLength = 50

// DefaultAgentName is the agent name a fresh draft starts with.
const DefaultAgentName = "Nova"

// Messages shown by the wizard.
const (
	MsgDescriptionTooShort = "Please provide at least 50 characters describing your business"
	MsgAgentNameRequired   = "Please provide an agent name"
	MsgSubmitFailed        = "Failed to complete setup"
	MsgExtractionFailed    = "Failed to process document. Please type manually."
	MsgUnsupportedFile     = "Please upload a PDF, Word or text document."
)

// ErrInvalidTransition is returned for an action the current step does not
// accept.
var ErrInvalidTransition = errors.New("invalid wizard transition")

// Step is one screen of the wizard.
type Step interface {
	Number() int
	Title() string
	Subtitle() string
}

// DescriptionStep collects what the business does.
type DescriptionStep struct{}

// KnowledgeBaseStep collects optional reference links.
type KnowledgeBaseStep struct{}

// IdentityStep collects the agent's name and personality.
type IdentityStep struct{}

// DoneStep is reached after a successful submission.
type DoneStep struct{}

func (DescriptionStep) Number() int { return 1 }

func (DescriptionStep) Title() string { return "Let's set up Nova for your business" }

func (DescriptionStep) Subtitle() string {
	return "Tell us about your business so Nova can assist your customers effectively"
}

func (KnowledgeBaseStep) Number() int { return 2 }

func (KnowledgeBaseStep) Title() string { return "Knowledge base (optional)" }

func (KnowledgeBaseStep) Subtitle() string {
	return "Provide links to your FAQ, documentation, or website"
}

func (IdentityStep) Number() int { return 3 }

func (IdentityStep) Title() string { return "Choose a personality" }

func (IdentityStep) Subtitle() string {
	return "How should Nova communicate with your customers?"
}

func (DoneStep) Number() int { return 4 }

func (DoneStep) Title() string { return "Setup complete" }

func (DoneStep) Subtitle() string {
	return "Setting up Nova for your business..."
}

// Steps lists the visible steps in order, for the progress indicator.
func Steps() []Step {
	return []Step{DescriptionStep{}, KnowledgeBaseStep{}, IdentityStep{}}
}

// Action is a user action on the wizard.
type Action string

const (
	ActionNext   Action = "next"
	ActionBack   Action = "back"
	ActionSkip   Action = "skip"
	ActionSubmit Action = "submit"
)

// KnowledgeBaseSlots is the number of link inputs offered.
const KnowledgeBaseSlots = 5

// Draft accumulates the wizard's answers.
type Draft struct {
	AgentName           string
	BusinessDescription string
	PersonalityType     Personality
	KnowledgeBaseURLs   [KnowledgeBaseSlots]string
}

// OnboardAPI finalizes onboarding on the backend.
type OnboardAPI interface {
	Onboard(ctx context.Context, token string, req novaapi.OnboardRequest) error
}

// Wizard is the state of one visitor's onboarding.
type Wizard struct {
	Step  Step
	Draft Draft
	// Error is the message shown above the current step.
	Error string
}

// NewWizard returns a wizard on the first step with default answers.
func NewWizard() *Wizard {
	return &Wizard{
		Step: DescriptionStep{},
		Draft: Draft{
			AgentName:       DefaultAgentName,
			PersonalityType: Friendly,
		},
	}
}

type transition struct {
	from   int
	action Action
}

// transitions maps (step, action) to the next step. Guards are applied by
// Apply before moving.
var transitions = map[transition]Step{
	{1, ActionNext}:   KnowledgeBaseStep{},
	{2, ActionNext}:   IdentityStep{},
	{2, ActionSkip}:   IdentityStep{},
	{2, ActionBack}:   DescriptionStep{},
	{3, ActionBack}:   KnowledgeBaseStep{},
	{3, ActionSubmit}: DoneStep{},
}

// Apply performs a navigation action. A guard failure keeps the current
// step, sets Error and returns the ValidationError. ActionSubmit is only
// checked here; Submit performs it.
func (w *Wizard) Apply(action Action) error {
	next, ok := transitions[transition{w.Step.Number(), action}]
	if !ok {
		return fmt.Errorf("%w: %s on step %d", ErrInvalidTransition, action, w.Step.Number())
	}

	if v := w.guard(action); v != nil {
		w.Error = v.Message
		return v
	}
	if action == ActionSkip {
		w.Draft.KnowledgeBaseURLs = [KnowledgeBaseSlots]string{}
	}

	w.Error = ""
	w.Step = next
	return nil
}

func (w *Wizard) guard(action Action) *form.ValidationError {
	switch w.Step.(type) {
	case DescriptionStep:
		if action == ActionNext {
			return ValidateDescription(w.Draft.BusinessDescription)
		}
	case IdentityStep:
		if action == ActionSubmit {
			if strings.TrimSpace(w.Draft.AgentName) == "" {
				return form.Invalid("agent_name", MsgAgentNameRequired)
			}
			// The description may have been edited since step 1 was left.
			return ValidateDescription(w.Draft.BusinessDescription)
		}
	}
	return nil
}

// ValidateDescription checks the business description.
func ValidateDescription(description string) *form.ValidationError {
	if strings.TrimSpace(description) == "" || form.Shorter(description, MinDescriptionLength) {
		return form.Invalid("business_description", MsgDescriptionTooShort)
	}
	return nil
}

// Submit finalizes onboarding from the identity step. On success the wizard
// moves to DoneStep; on failure it stays on the identity step with Error set.
func (w *Wizard) Submit(ctx context.Context, api OnboardAPI, token string) error {
	if _, ok := w.Step.(IdentityStep); !ok {
		return fmt.Errorf("%w: submit on step %d", ErrInvalidTransition, w.Step.Number())
	}
	if v := w.guard(ActionSubmit); v != nil {
		w.Error = v.Message
		return v
	}

	err := api.Onboard(ctx, token, novaapi.OnboardRequest{
		AgentName:           strings.TrimSpace(w.Draft.AgentName),
		BusinessDescription: w.Draft.BusinessDescription,
		PersonalityType:     string(w.Draft.PersonalityType),
	})
	if err != nil {
		w.Error = novaapi.MessageOf(err, MsgSubmitFailed)
		return err
	}

	w.Error = ""
	w.Step = DoneStep{}
	return nil
}

// Done reports whether onboarding has been submitted.
func (w *Wizard) Done() bool {
	_, ok := w.Step.(DoneStep)
	return ok
}

var uploadExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// AcceptUpload reports whether a document with this name can be sent for
// text extraction.
func AcceptUpload(filename string) bool {
	return uploadExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ApplyExtraction records the result of a document extraction. Success
// replaces the description; failure leaves it for manual entry.
func (w *Wizard) ApplyExtraction(text string, err error) {
	if err != nil {
		w.Error = MsgExtractionFailed
		return
	}
	w.Draft.BusinessDescription = text
	w.Error = ""
}

// SetKnowledgeBaseURLs copies up to KnowledgeBaseSlots trimmed links into
// the draft.
func (w *Wizard) SetKnowledgeBaseURLs(urls []string) {
	var out [KnowledgeBaseSlots]string
	for i := 0; i < len(urls) && i < KnowledgeBaseSlots; i++ {
		out[i] = strings.TrimSpace(urls[i])
	}
	w.Draft.KnowledgeBaseURLs = out
}
