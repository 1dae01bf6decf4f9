// ABOUTME: CSV export of the leads table as currently filtered and sorted
// ABOUTME: Every field is quoted; columns are Name, Email, Phone, Intent, Date

package listing

import (
	"io"
	"strings"
	"time"

	"github.com/2389/nova-dashboard/internal/novaapi"
)

// CSVHeader is the fixed column order of the export.
var CSVHeader = []string{"Name", "Email", "Phone", "Intent", "Date"}

// csvDateLayout matches an en-US short date.
const csvDateLayout = "1/2/2006"

// WriteLeadsCSV writes a header line and one line per lead, joined by "\n"
// with no trailing newline. Empty values are written as N/A.
func WriteLeadsCSV(w io.Writer, leads []novaapi.Lead) error {
	lines := make([]string, 0, len(leads)+1)
	lines = append(lines, csvLine(CSVHeader))
	for _, l := range leads {
		date := ""
		if !l.Timestamp.IsZero() {
			date = l.Timestamp.Format(csvDateLayout)
		}
		lines = append(lines, csvLine([]string{
			orNA(l.CustomerName),
			orNA(l.CustomerEmail),
			orNA(l.CustomerPhone),
			orNA(l.Intent),
			orNA(date),
		}))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// CSVFilename names an export made at now.
func CSVFilename(now time.Time) string {
	return "nova-leads-" + now.UTC().Format("2006-01-02") + ".csv"
}
