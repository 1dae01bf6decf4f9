// ABOUTME: Server-rendered dashboard UI: routes, dependencies and shared handler plumbing
// ABOUTME: Every backend call happens here on the server; the browser only holds opaque cookies

package webui

import (
	"context"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/2389/nova-dashboard/internal/assets"
	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/authflow"
	"github.com/2389/nova-dashboard/internal/billing"
	"github.com/2389/nova-dashboard/internal/dashboard"
	"github.com/2389/nova-dashboard/internal/demo"
	"github.com/2389/nova-dashboard/internal/guide"
	"github.com/2389/nova-dashboard/internal/novaapi"
	"github.com/2389/nova-dashboard/internal/onboarding"
	"github.com/2389/nova-dashboard/internal/session"
	"github.com/2389/nova-dashboard/internal/widget"
)

// maxFormBytes bounds request bodies, document uploads included.
const maxFormBytes = 10 << 20

// Backend is the part of the Nova REST API the pages call directly.
// Session, verification and demo calls go through their own components.
type Backend interface {
	authflow.ResetAPI
	authflow.ForgotAPI
	dashboard.ProfileAPI
	dashboard.OverviewAPI
	onboarding.OnboardAPI
	billing.PaymentAPI

	GetConversation(ctx context.Context, token, sessionID string) (*novaapi.Conversation, error)
	UpdateBusinessProfile(ctx context.Context, token string, update novaapi.ProfileUpdate) error
	SetTestConfig(ctx context.Context, token string, cfg novaapi.TestConfig) error
	ExtractBusinessInfo(ctx context.Context, token, filename string, r io.Reader) (string, error)
}

// Config holds UI settings.
type Config struct {
	// APIURL is the backend base URL written into the widget snippet.
	APIURL string
	// WidgetURL is where the widget bundle and preview page are served.
	WidgetURL     string
	SecureCookies bool
	// StreamHeartbeat is the interval between SSE keep-alive comments.
	StreamHeartbeat time.Duration
}

// Deps are the components the UI drives.
type Deps struct {
	Backend  Backend
	Sessions *session.Manager
	Verifier *authflow.Verifier
	Gate     *dashboard.Gate
	Drafts   *onboarding.Drafts
	Sandbox  *demo.Sandbox
	Events   *widget.Broadcaster
	Setup    *guide.Setup
}

// UI serves the dashboard pages.
type UI struct {
	cfg      Config
	backend  Backend
	sessions *session.Manager
	verifier *authflow.Verifier
	gate     *dashboard.Gate
	drafts   *onboarding.Drafts
	sandbox  *demo.Sandbox
	events   *widget.Broadcaster
	setup    *guide.Setup
	pages    map[string]*template.Template
	now      func() time.Time
	logger   *slog.Logger
}

// New creates the UI and registers its logout hooks on the session manager.
func New(cfg Config, deps Deps, logger *slog.Logger) (*UI, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StreamHeartbeat <= 0 {
		cfg.StreamHeartbeat = 15 * time.Second
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	ui := &UI{
		cfg:      cfg,
		backend:  deps.Backend,
		sessions: deps.Sessions,
		verifier: deps.Verifier,
		gate:     deps.Gate,
		drafts:   deps.Drafts,
		sandbox:  deps.Sandbox,
		events:   deps.Events,
		setup:    deps.Setup,
		pages:    pages,
		now:      time.Now,
		logger:   logger.With("component", "webui"),
	}
	ui.sessions.OnLogout(ui.gate.Forget)
	ui.sessions.OnLogout(ui.drafts.Discard)
	return ui, nil
}

// Handler returns the router for every dashboard route.
func (ui *UI) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(ui.requestLogger)
	r.Use(chiMiddleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static", assets.FileServer()))

	r.Group(func(r chi.Router) {
		r.Use(limitBody)
		r.Use(ui.tabCookie)
		r.Use(ui.csrf)
		r.Use(auth.OptionalSession(ui.sessions))

		r.Get("/", ui.handleRoot)

		r.Get("/login", ui.handleLoginPage)
		r.Post("/login", ui.handleLogin)
		r.Get("/signup", ui.handleSignupPage)
		r.Post("/signup", ui.handleSignup)
		r.Get("/forgot-password", ui.handleForgotPage)
		r.Post("/forgot-password", ui.handleForgot)
		r.Get("/reset-password", ui.handleResetPage)
		r.Post("/reset-password", ui.handleReset)
		r.Get("/verify", ui.handleVerify)
		r.Post("/verify/resend", ui.handleVerifyResend)
		r.Post("/verify/auto-login", ui.handleAutoLogin)
		r.Post("/logout", ui.handleLogout)

		r.Get("/demo", ui.handleDemoPage)
		r.Get("/try-demo", ui.handleDemoPage)
		r.Post("/demo/config", ui.handleDemoConfig)
		r.Post("/demo/start", ui.handleDemoStart)
		r.Post("/demo/reset", ui.handleDemoReset)
		r.Post("/demo/signup", ui.handleDemoSignup)
		r.Post("/demo/events", ui.handleDemoEvent)
		r.Get("/demo/events/stream", ui.handleDemoStream)
		r.Post("/demo/turn", ui.handleDemoTurn)

		r.Get("/pricing", ui.handlePricing)
	})

	r.Group(func(r chi.Router) {
		r.Use(limitBody)
		r.Use(ui.tabCookie)
		r.Use(ui.csrf)
		r.Use(auth.RequireSession(ui.sessions, authflow.ViewLogin.Path()))

		r.Post("/session/activity", ui.handleActivity)
		r.Get("/onboarding", ui.handleOnboardingPage)
		r.Post("/onboarding", ui.handleOnboarding)
		r.Post("/onboarding/upload", ui.handleOnboardingUpload)

		r.Group(func(r chi.Router) {
			r.Use(ui.requireOnboarded)

			r.Get("/dashboard", ui.handleDashboard)
			r.Post("/dashboard/guide", ui.handleGuide)

			r.Get("/leads", ui.handleLeads)
			r.Get("/leads/export.csv", ui.handleLeadsExport)
			r.Get("/leads/{id}", ui.handleLeadDetail)

			r.Get("/conversations", ui.handleConversations)
			r.Get("/conversations/{sessionID}", ui.handleTranscript)

			r.Get("/metrics", ui.handleMetrics)

			r.Get("/settings", ui.handleSettingsPage)
			r.Post("/settings", ui.handleSettings)
			r.Post("/settings/upload", ui.handleSettingsUpload)

			r.Get("/test-agent", ui.handleTestAgentPage)
			r.Post("/test-agent/config", ui.handleTestAgentConfig)
			r.Post("/test-agent/save", ui.handleTestAgentSave)
			r.Post("/test-agent/upload", ui.handleTestAgentUpload)

			r.Post("/pricing/checkout", ui.handleCheckout)

			r.Get("/help", ui.handleHelp)
			r.Get("/help/{topic}", ui.handleHelp)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ui.renderError(w, r, http.StatusNotFound, "Page not found")
	})
	return r
}
