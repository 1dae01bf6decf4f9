// ABOUTME: Conversation list tabs and display helpers
// ABOUTME: Contact tabs pass the list through until the backend reports contact presence

package listing

import "github.com/2389/nova-dashboard/internal/novaapi"

// ConversationTab is a filter tab on the conversations page.
type ConversationTab string

const (
	TabAll            ConversationTab = "all"
	TabWithContact    ConversationTab = "with-contact"
	TabWithoutContact ConversationTab = "without-contact"
)

// ConversationTabs lists the tabs with their labels.
var ConversationTabs = []Option{
	{Value: string(TabAll), Label: "All Conversations"},
	{Value: string(TabWithContact), Label: "With Contact Info"},
	{Value: string(TabWithoutContact), Label: "Without Contact Info"},
}

// ParseConversationTab returns the tab named s, or TabAll.
func ParseConversationTab(s string) ConversationTab {
	if hasOption(ConversationTabs, s) {
		return ConversationTab(s)
	}
	return TabAll
}

// FilterConversations applies a tab. Conversations do not yet carry a
// contact flag, so the contact tabs return the list unchanged.
// TODO: filter on has_contact once GET /conversations returns it.
func FilterConversations(convs []novaapi.Conversation, tab ConversationTab) []novaapi.Conversation {
	out := make([]novaapi.Conversation, len(convs))
	copy(out, convs)
	return out
}

// EmptyMessage is the text shown when a tab has no rows.
func EmptyMessage(tab ConversationTab) string {
	if tab != TabAll {
		return "No conversations match this filter"
	}
	return "No conversations yet"
}

// ShortID truncates an id to n runes for table display.
func ShortID(id string, n int) string {
	r := []rune(id)
	if len(r) <= n {
		return id
	}
	return string(r[:n])
}
