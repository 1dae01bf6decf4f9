// ABOUTME: Embed snippet generation and widget preview URLs
// ABOUTME: The snippet is the one artifact the dashboard generates for customers

package widget

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"
)

// DefaultBusinessName is used in the snippet when the account has none.
const DefaultBusinessName = "Your Business"

// Snippet returns the HTML a customer pastes before </body>. The config
// values are JSON-encoded, which escapes quotes and angle brackets so they
// cannot break out of the script element.
func Snippet(userID, businessName, apiURL, widgetURL string) string {
	if strings.TrimSpace(businessName) == "" {
		businessName = DefaultBusinessName
	}

	var b strings.Builder
	b.WriteString("<!-- Nova AI Widget -->\n")
	b.WriteString("<script>\n")
	b.WriteString("window.NovaConfig = {\n")
	fmt.Fprintf(&b, "    userId: %s,\n", jsString(userID))
	fmt.Fprintf(&b, "    businessName: %s,\n", jsString(businessName))
	fmt.Fprintf(&b, "    apiUrl: %s\n", jsString(apiURL))
	b.WriteString("};\n")
	b.WriteString("</script>\n")
	fmt.Fprintf(&b, "<script type=\"module\" src=\"%s\"></script>\n", html.EscapeString(strings.TrimRight(widgetURL, "/")+"/widget.js"))
	b.WriteString("<!-- End Nova AI Widget -->")
	return b.String()
}

func jsString(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		// Marshal of a string cannot fail.
		return `""`
	}
	return string(out)
}

// TestURL is the preview URL for a signed-in user's test configuration.
func TestURL(widgetURL string) string {
	return withFlag(widgetURL, "testMode")
}

// DemoURL is the preview URL for the public demo.
func DemoURL(widgetURL string) string {
	return withFlag(widgetURL, "demo")
}

func withFlag(widgetURL, flag string) string {
	u, err := url.Parse(widgetURL)
	if err != nil {
		return widgetURL + "?" + flag + "=true"
	}
	q := u.Query()
	q.Set(flag, "true")
	u.RawQuery = q.Encode()
	return u.String()
}
