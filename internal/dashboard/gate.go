// ABOUTME: Onboarding gate deciding whether a signed-in user sees the wizard or the dashboard
// ABOUTME: The decision is made once per session and kept in memory until logout

package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/2389/nova-dashboard/internal/novaapi"
)

// ProfileAPI reads the business profile.
type ProfileAPI interface {
	GetBusinessProfile(ctx context.Context, token string) (*novaapi.BusinessProfile, error)
}

// Decision is the gate's verdict for one session.
type Decision struct {
	NeedsOnboarding bool
	Profile         *novaapi.BusinessProfile
}

// Gate caches one Decision per session id.
type Gate struct {
	api    ProfileAPI
	logger *slog.Logger

	mu        sync.Mutex
	decisions map[string]Decision
}

// NewGate creates a gate backed by the profile endpoint.
func NewGate(api ProfileAPI, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		api:       api,
		logger:    logger.With("component", "dashboard"),
		decisions: make(map[string]Decision),
	}
}

// Check returns the cached decision for the session, fetching the profile on
// first use. A failed fetch, a missing profile, or a profile without a
// business description all mean onboarding is required.
func (g *Gate) Check(ctx context.Context, sessionID, token string) Decision {
	g.mu.Lock()
	d, ok := g.decisions[sessionID]
	g.mu.Unlock()
	if ok {
		return d
	}

	profile, err := g.api.GetBusinessProfile(ctx, token)
	switch {
	case err != nil:
		g.logger.Warn("profile check failed, routing to onboarding", "kind", novaapi.KindOf(err), "error", err)
		d = Decision{NeedsOnboarding: true}
	case profile == nil || strings.TrimSpace(profile.BusinessDescription) == "":
		d = Decision{NeedsOnboarding: true, Profile: profile}
	default:
		d = Decision{Profile: profile}
	}

	g.mu.Lock()
	g.decisions[sessionID] = d
	g.mu.Unlock()
	return d
}

// MarkOnboarded records that the session finished onboarding.
func (g *Gate) MarkOnboarded(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := g.decisions[sessionID]
	d.NeedsOnboarding = false
	g.decisions[sessionID] = d
}

// Forget drops the session's decision. Registered as a logout hook.
func (g *Gate) Forget(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.decisions, sessionID)
}

// Len returns the number of cached decisions.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.decisions)
}
