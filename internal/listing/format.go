// ABOUTME: Date and time formatting for tables and transcripts
// ABOUTME: Zero timestamps render empty rather than as the year 1

package listing

import "time"

const (
	dateTimeLayout = "Jan 2, 2006, 3:04 PM"
	timeLayout     = "3:04 PM"
)

// FormatDateTime renders a timestamp like "Mar 1, 2025, 10:30 AM". Zero
// times render as an empty string.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}

// FormatTime renders the time of day like "10:30 AM".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}
