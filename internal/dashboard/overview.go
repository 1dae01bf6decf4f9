// ABOUTME: Dashboard overview: quick stats and the most recent leads and conversations
// ABOUTME: The three backend reads run concurrently and fail independently

package dashboard

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/2389/nova-dashboard/internal/listing"
	"github.com/2389/nova-dashboard/internal/novaapi"
)

// RecentCount is how many leads and conversations the overview lists.
const RecentCount = 5

// Messages shown when a section could not be loaded.
const (
	MsgMetricsUnavailable       = "Failed to load metrics"
	MsgLeadsUnavailable         = "Failed to load leads"
	MsgConversationsUnavailable = "Failed to load conversations"
)

// OverviewAPI is the set of reads the overview needs.
type OverviewAPI interface {
	GetMetrics(ctx context.Context, token string) (*novaapi.Metrics, error)
	ListLeads(ctx context.Context, token string) ([]novaapi.Lead, error)
	ListConversations(ctx context.Context, token string) ([]novaapi.Conversation, error)
}

// Card is one quick-stat tile.
type Card struct {
	Title string
	Value string
	Icon  string
}

// Overview is everything the dashboard home page renders.
type Overview struct {
	Cards               []Card
	RecentLeads         []novaapi.Lead
	RecentConversations []novaapi.Conversation

	MetricsError       string
	LeadsError         string
	ConversationsError string
}

// LoadOverview fetches the overview sections in parallel.
func LoadOverview(ctx context.Context, api OverviewAPI, token string) *Overview {
	var (
		wg      sync.WaitGroup
		metrics *novaapi.Metrics
		leads   []novaapi.Lead
		convs   []novaapi.Conversation
		errs    [3]error
	)
	wg.Go(func() { metrics, errs[0] = api.GetMetrics(ctx, token) })
	wg.Go(func() { leads, errs[1] = api.ListLeads(ctx, token) })
	wg.Go(func() { convs, errs[2] = api.ListConversations(ctx, token) })
	wg.Wait()

	ov := &Overview{}
	if errs[0] != nil {
		ov.MetricsError = novaapi.MessageOf(errs[0], MsgMetricsUnavailable)
	}
	if metrics == nil {
		metrics = &novaapi.Metrics{}
	}
	ov.Cards = cardsFor(metrics)

	if errs[1] != nil {
		ov.LeadsError = novaapi.MessageOf(errs[1], MsgLeadsUnavailable)
	} else {
		sorted := listing.FilterLeads(leads, listing.LeadQuery{Sort: listing.SortDateDesc, Intent: listing.IntentAll})
		ov.RecentLeads = listing.Recent(sorted, RecentCount)
	}

	if errs[2] != nil {
		ov.ConversationsError = novaapi.MessageOf(errs[2], MsgConversationsUnavailable)
	} else {
		sorted := slices.Clone(convs)
		slices.SortStableFunc(sorted, func(a, b novaapi.Conversation) int {
			return cmp.Compare(b.StartedAt.UnixNano(), a.StartedAt.UnixNano())
		})
		ov.RecentConversations = listing.Recent(sorted, RecentCount)
	}
	return ov
}

func cardsFor(m *novaapi.Metrics) []Card {
	return []Card{
		{Title: "Total Leads", Value: fmt.Sprint(m.TotalLeads), Icon: "📋"},
		{Title: "Conversations", Value: fmt.Sprint(m.TotalConversations), Icon: "💬"},
		{Title: "Avg Response Time", Value: fmt.Sprintf("%gms", m.AvgTTFRMs), Icon: "⚡️"},
		{Title: "Capture Rate", Value: fmt.Sprintf("%g%%", m.CaptureRate), Icon: "🎯"},
	}
}

// LeadContact is the single contact column shown for a lead: email, else
// phone, else "N/A".
func LeadContact(l novaapi.Lead) string {
	switch {
	case l.CustomerEmail != "":
		return l.CustomerEmail
	case l.CustomerPhone != "":
		return l.CustomerPhone
	default:
		return "N/A"
	}
}
