// ABOUTME: Lead list derivation: search, intent filter and sort over a fetched list
// ABOUTME: Never mutates the input; name sorts use English collation

package listing

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/2389/nova-dashboard/internal/novaapi"
)

// LeadSort orders the leads table.
type LeadSort string

const (
	SortDateDesc LeadSort = "date-desc"
	SortDateAsc  LeadSort = "date-asc"
	SortNameAsc  LeadSort = "name-asc"
	SortNameDesc LeadSort = "name-desc"
)

// LeadSorts lists the sort options with their labels, default first.
var LeadSorts = []Option{
	{Value: string(SortDateDesc), Label: "Newest First"},
	{Value: string(SortDateAsc), Label: "Oldest First"},
	{Value: string(SortNameAsc), Label: "Name A-Z"},
	{Value: string(SortNameDesc), Label: "Name Z-A"},
}

// IntentAll disables the intent filter.
const IntentAll = "all"

// Intents lists the intent filter options.
var Intents = []Option{
	{Value: IntentAll, Label: "All Intents"},
	{Value: "sales", Label: "Sales"},
	{Value: "support", Label: "Support"},
	{Value: "general", Label: "General"},
	{Value: "feedback", Label: "Feedback"},
}

// Option is a value and label for a select input.
type Option struct {
	Value string
	Label string
}

// LeadQuery is the table's current controls.
type LeadQuery struct {
	Search string
	Intent string
	Sort   LeadSort
}

// ParseLeadQuery normalizes raw control values, falling back to defaults
// for unknown ones. The search term is kept as typed.
func ParseLeadQuery(search, intent, sort string) LeadQuery {
	q := LeadQuery{Search: search, Intent: IntentAll, Sort: SortDateDesc}
	if hasOption(Intents, intent) {
		q.Intent = intent
	}
	if hasOption(LeadSorts, sort) {
		q.Sort = LeadSort(sort)
	}
	return q
}

func hasOption(opts []Option, v string) bool {
	return slices.ContainsFunc(opts, func(o Option) bool { return o.Value == v })
}

// FilterLeads returns a new slice holding the leads that match q, in q's
// order.
func FilterLeads(leads []novaapi.Lead, q LeadQuery) []novaapi.Lead {
	out := make([]novaapi.Lead, 0, len(leads))
	needle := strings.ToLower(q.Search)
	for _, l := range leads {
		if needle != "" && !matchesSearch(l, needle) {
			continue
		}
		if q.Intent != "" && q.Intent != IntentAll && l.Intent != q.Intent {
			continue
		}
		out = append(out, l)
	}

	switch q.Sort {
	case SortDateAsc:
		slices.SortStableFunc(out, func(a, b novaapi.Lead) int { return a.Timestamp.Compare(b.Timestamp.Time) })
	case SortNameAsc, SortNameDesc:
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b novaapi.Lead) int {
			if q.Sort == SortNameDesc {
				a, b = b, a
			}
			return c.CompareString(a.CustomerName, b.CustomerName)
		})
	default:
		slices.SortStableFunc(out, func(a, b novaapi.Lead) int { return b.Timestamp.Compare(a.Timestamp.Time) })
	}
	return out
}

func matchesSearch(l novaapi.Lead, needle string) bool {
	return strings.Contains(strings.ToLower(l.CustomerName), needle) ||
		strings.Contains(strings.ToLower(l.CustomerEmail), needle) ||
		strings.Contains(strings.ToLower(l.CustomerPhone), needle)
}

// FindLead returns the lead with id.
func FindLead(leads []novaapi.Lead, id string) (novaapi.Lead, bool) {
	for _, l := range leads {
		if string(l.ID) == id {
			return l, true
		}
	}
	return novaapi.Lead{}, false
}

// Recent returns up to n items from the front of items.
func Recent[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
