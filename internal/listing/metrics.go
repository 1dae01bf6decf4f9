// ABOUTME: Presentation of server-computed metrics with threshold-based insight copy
// ABOUTME: No aggregation happens here; figures come straight from GET /metrics

package listing

import (
	"fmt"
	"strconv"

	"github.com/2389/nova-dashboard/internal/novaapi"
)

// ExcellentResponseMs is the time-to-first-response below which the agent
// is rated excellent.
const ExcellentResponseMs = 10000

// Summary is the metrics page model.
type Summary struct {
	TotalConversations int
	TotalLeads         int
	CaptureRate        string // e.g. "42.5%"
	AvgResponse        string // e.g. "1.25s"
	HasData            bool

	// ShowStatus is false when there is no data or no measured response time.
	ShowStatus      bool
	StatusLabel     string
	StatusExcellent bool

	CaptureInsight      string
	ResponseInsight     string
	ConversationInsight string
}

// Summarize derives the page model from the backend's figures.
func Summarize(m novaapi.Metrics) Summary {
	rate := formatNumber(m.CaptureRate)
	s := Summary{
		TotalConversations: m.TotalConversations,
		TotalLeads:         m.TotalLeads,
		CaptureRate:        rate + "%",
		AvgResponse:        FormatSeconds(m.AvgTTFRMs),
		HasData:            m.TotalConversations > 0 || m.TotalLeads > 0,
	}

	excellent := m.AvgTTFRMs < ExcellentResponseMs
	if s.HasData && m.AvgTTFRMs > 0 {
		s.ShowStatus = true
		s.StatusExcellent = excellent
		s.StatusLabel = "Needs Improvement"
		if excellent {
			s.StatusLabel = "Excellent"
		}
	}

	switch {
	case m.CaptureRate >= 50:
		s.CaptureInsight = fmt.Sprintf("Great job! %s%% of conversations result in lead capture.", rate)
	case s.HasData:
		s.CaptureInsight = fmt.Sprintf("Current rate: %s%%. Consider optimizing your conversation flow.", rate)
	default:
		s.CaptureInsight = "Start conversations to see your capture rate here."
	}

	switch {
	case !s.HasData:
		s.ResponseInsight = "Response time metrics will appear once you have conversations."
	case excellent:
		s.ResponseInsight = "Your response time is excellent! Keep it up."
	default:
		s.ResponseInsight = "Consider optimizing your prompts to improve response time."
	}

	if s.HasData {
		s.ConversationInsight = fmt.Sprintf("You've handled %d %s so far.",
			m.TotalConversations, Plural(m.TotalConversations, "conversation"))
	} else {
		s.ConversationInsight = "No conversations yet. Share your widget link to start engaging with customers!"
	}
	return s
}

// FormatSeconds renders milliseconds as seconds with two decimals.
func FormatSeconds(ms float64) string {
	if ms <= 0 {
		return "0.00s"
	}
	return strconv.FormatFloat(ms/1000, 'f', 2, 64) + "s"
}

// formatNumber prints a float the shortest way, without a trailing ".0".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Plural appends "s" to word unless n is 1.
func Plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
