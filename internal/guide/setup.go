// ABOUTME: Quick setup guide shown on the dashboard until the user marks it complete
// ABOUTME: Completion is a per-user preference that outlives sessions

package guide

import (
	"context"
	"fmt"

	"github.com/2389/nova-dashboard/internal/store"
)

// Step is one item of the setup guide.
type Step struct {
	ID          string
	Icon        string
	Title       string
	Description string
	// Link and LinkText are set for steps with an action button.
	Link     string
	LinkText string
}

var steps = []Step{
	{ID: "get-code", Icon: "🚀", Title: "Get Widget Code", Description: "Go to Settings to access your unique embed code", Link: "/settings", LinkText: "Go to Settings"},
	{ID: "copy-code", Icon: "📋", Title: "Copy the Code", Description: "Copy the widget code to your clipboard"},
	{ID: "add-to-site", Icon: "🌐", Title: "Add to Website", Description: "Paste before closing </body> tag"},
	{ID: "test", Icon: "✅", Title: "Test Widget", Description: "Visit your site and test the chat"},
}

// Header copy for the guide card.
const (
	Heading    = "Welcome to Nova!"
	Subheading = "Get your AI assistant live in 4 simple steps"
)

// Steps returns the guide steps in order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// Setup reads and writes the guide's completion flag.
type Setup struct {
	prefs store.PreferenceStore
}

// NewSetup creates a Setup over the preference store.
func NewSetup(prefs store.PreferenceStore) *Setup {
	return &Setup{prefs: prefs}
}

// Completed reports whether userID has dismissed the guide.
func (s *Setup) Completed(ctx context.Context, userID string) (bool, error) {
	p, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("reading setup guide state: %w", err)
	}
	return p.SetupCompleted, nil
}

// Complete marks the guide done.
func (s *Setup) Complete(ctx context.Context, userID string) error {
	return s.prefs.SetSetupCompleted(ctx, userID, true)
}

// Reset shows the guide again.
func (s *Setup) Reset(ctx context.Context, userID string) error {
	return s.prefs.SetSetupCompleted(ctx, userID, false)
}
