// ABOUTME: Sidebar navigation for the signed-in shell

package dashboard

// NavItem is one sidebar link.
type NavItem struct {
	ID     string
	Label  string
	Icon   string
	Path   string
	Active bool
}

var navItems = []NavItem{
	{ID: "dashboard", Label: "Dashboard", Icon: "🏠", Path: "/dashboard"},
	{ID: "leads", Label: "Leads", Icon: "📋", Path: "/leads"},
	{ID: "conversations", Label: "Conversations", Icon: "💬", Path: "/conversations"},
	{ID: "metrics", Label: "Metrics", Icon: "📊", Path: "/metrics"},
	{ID: "test-agent", Label: "Test Agent", Icon: "🧪", Path: "/test-agent"},
	{ID: "settings", Label: "Settings", Icon: "⚙️", Path: "/settings"},
	{ID: "pricing", Label: "Pricing", Icon: "💳", Path: "/pricing"},
}

// Nav returns the sidebar with the item matching active highlighted.
func Nav(active string) []NavItem {
	out := make([]NavItem, len(navItems))
	for i, item := range navItems {
		item.Active = item.ID == active
		out[i] = item
	}
	return out
}
