// ABOUTME: Handlers for the signed-in pages: overview, leads, conversations, metrics and help
// ABOUTME: Each page fetches fresh data from the backend on every load

package webui

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/dashboard"
	"github.com/2389/nova-dashboard/internal/guide"
	"github.com/2389/nova-dashboard/internal/listing"
	"github.com/2389/nova-dashboard/internal/novaapi"
)

type dashboardData struct {
	*dashboard.Overview
	BusinessName string
	ShowGuide    bool
	GuideSteps   []guide.Step
	Heading      string
	Subheading   string
}

func (ui *UI) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	completed, err := ui.setup.Completed(r.Context(), id.UserID)
	if err != nil {
		ui.logger.Warn("failed to read setup guide state", "error", err)
	}

	d := dashboardData{
		Overview:     dashboard.LoadOverview(r.Context(), ui.backend, id.Token),
		BusinessName: id.BusinessName,
		ShowGuide:    !completed,
		GuideSteps:   guide.Steps(),
		Heading:      guide.Heading,
		Subheading:   guide.Subheading,
	}
	ui.render(w, http.StatusOK, "dashboard", ui.newPage(r, "Dashboard", "dashboard", d))
}

// handleGuide dismisses or restores the quick setup guide.
func (ui *UI) handleGuide(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	var err error
	switch r.FormValue("action") {
	case "complete":
		err = ui.setup.Complete(r.Context(), id.UserID)
	case "reset":
		err = ui.setup.Reset(r.Context(), id.UserID)
	default:
		ui.renderError(w, r, http.StatusBadRequest, "Unknown guide action")
		return
	}
	if err != nil {
		ui.logger.Error("failed to update setup guide", "error", err)
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

type leadsData struct {
	Query   listing.LeadQuery
	Leads   []novaapi.Lead
	Total   int
	Sorts   []listing.Option
	Intents []listing.Option
	Error   string
}

func leadQuery(r *http.Request) listing.LeadQuery {
	q := r.URL.Query()
	return listing.ParseLeadQuery(q.Get("search"), q.Get("intent"), q.Get("sort"))
}

func (ui *UI) handleLeads(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	d := leadsData{
		Query:   leadQuery(r),
		Sorts:   listing.LeadSorts,
		Intents: listing.Intents,
	}

	leads, err := ui.backend.ListLeads(r.Context(), id.Token)
	if err != nil {
		ui.logger.Warn("failed to load leads", "kind", novaapi.KindOf(err), "error", err)
		d.Error = dashboard.MsgLeadsUnavailable
	}
	d.Total = len(leads)
	d.Leads = listing.FilterLeads(leads, d.Query)

	ui.render(w, http.StatusOK, "leads", ui.newPage(r, "Leads", "leads", d))
}

// handleLeadsExport downloads the filtered, sorted table as CSV.
func (ui *UI) handleLeadsExport(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	leads, err := ui.backend.ListLeads(r.Context(), id.Token)
	if err != nil {
		ui.logger.Warn("failed to load leads for export", "error", err)
		ui.renderError(w, r, http.StatusBadGateway, dashboard.MsgLeadsUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := listing.WriteLeadsCSV(&buf, listing.FilterLeads(leads, leadQuery(r))); err != nil {
		ui.logger.Error("failed to write leads CSV", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+listing.CSVFilename(ui.now())+`"`)
	_, _ = buf.WriteTo(w)
}

func (ui *UI) handleLeadDetail(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	leads, err := ui.backend.ListLeads(r.Context(), id.Token)
	if err != nil {
		ui.renderError(w, r, http.StatusBadGateway, dashboard.MsgLeadsUnavailable)
		return
	}
	lead, ok := listing.FindLead(leads, chi.URLParam(r, "id"))
	if !ok {
		ui.renderError(w, r, http.StatusNotFound, "Lead not found")
		return
	}
	ui.render(w, http.StatusOK, "lead", ui.newPage(r, "Lead Details", "leads", lead))
}

type conversationsData struct {
	Tabs          []listing.Option
	Tab           listing.ConversationTab
	Conversations []novaapi.Conversation
	Empty         string
	Error         string
}

func (ui *UI) handleConversations(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	tab := listing.ParseConversationTab(r.URL.Query().Get("tab"))
	d := conversationsData{
		Tabs:  listing.ConversationTabs,
		Tab:   tab,
		Empty: listing.EmptyMessage(tab),
	}

	convs, err := ui.backend.ListConversations(r.Context(), id.Token)
	if err != nil {
		ui.logger.Warn("failed to load conversations", "kind", novaapi.KindOf(err), "error", err)
		d.Error = dashboard.MsgConversationsUnavailable
	}
	d.Conversations = listing.FilterConversations(convs, tab)

	ui.render(w, http.StatusOK, "conversations", ui.newPage(r, "Conversations", "conversations", d))
}

func (ui *UI) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	conv, err := ui.backend.GetConversation(r.Context(), id.Token, chi.URLParam(r, "sessionID"))
	switch {
	case novaapi.KindOf(err) == novaapi.KindNotFoundOrStale:
		ui.renderError(w, r, http.StatusNotFound, "Conversation not found")
		return
	case err != nil:
		ui.logger.Warn("failed to load transcript", "error", err)
		ui.renderError(w, r, http.StatusBadGateway, "Failed to load conversation")
		return
	}
	ui.render(w, http.StatusOK, "conversation", ui.newPage(r, "Conversation", "conversations", conv))
}

type metricsData struct {
	listing.Summary
	Error string
}

func (ui *UI) handleMetrics(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	var d metricsData
	m, err := ui.backend.GetMetrics(r.Context(), id.Token)
	switch {
	case err != nil:
		ui.logger.Warn("failed to load metrics", "kind", novaapi.KindOf(err), "error", err)
		d.Error = dashboard.MsgMetricsUnavailable
	case m != nil:
		d.Summary = listing.Summarize(*m)
	default:
		d.Summary = listing.Summarize(novaapi.Metrics{})
	}
	ui.render(w, http.StatusOK, "metrics", ui.newPage(r, "Metrics", "metrics", d))
}

type helpData struct {
	Topics []guide.Topic
	Body   template.HTML
}

func (ui *UI) handleHelp(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "topic")
	if slug == "" {
		slug = guide.DefaultTopic
	}

	body, err := guide.Render(slug)
	if errors.Is(err, guide.ErrUnknownTopic) {
		ui.renderError(w, r, http.StatusNotFound, "Help topic not found")
		return
	}
	if err != nil {
		ui.logger.Error("failed to render help topic", "topic", slug, "error", err)
		ui.renderError(w, r, http.StatusInternalServerError, "Failed to load help")
		return
	}

	topics, err := guide.Topics(slug)
	if err != nil {
		ui.logger.Error("failed to list help topics", "error", err)
	}
	ui.render(w, http.StatusOK, "help", ui.newPage(r, "Help", "none", helpData{Topics: topics, Body: body}))
}
