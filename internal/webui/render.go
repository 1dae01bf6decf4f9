// ABOUTME: Template loading and page rendering
// ABOUTME: Each page template is parsed once with the shared layout and partials

package webui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/2389/nova-dashboard/internal/assets"
	"github.com/2389/nova-dashboard/internal/auth"
	"github.com/2389/nova-dashboard/internal/dashboard"
	"github.com/2389/nova-dashboard/internal/listing"
	"github.com/2389/nova-dashboard/internal/novaapi"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"asset":    assets.Path,
	"dateTime": func(ts novaapi.Timestamp) string { return listing.FormatDateTime(ts.Time) },
	"timeOnly": func(ts novaapi.Timestamp) string { return listing.FormatTime(ts.Time) },
	"shortID":  listing.ShortID,
	"plural":   listing.Plural,
	"contact":  dashboard.LeadContact,
	"orNA": func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	},
	"add":      func(a, b int) int { return a + b },
	"seconds":  func(d time.Duration) int { return int(d / time.Second) },
	"eqString": func(a, b any) bool { return fmt.Sprint(a) == fmt.Sprint(b) },
}

// parsePages builds one template set per page file.
func parsePages() (map[string]*template.Template, error) {
	layout, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing partials: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// shellData is the signed-in frame around app pages.
type shellData struct {
	Nav          []dashboard.NavItem
	Email        string
	BusinessName string
	Initial      string
}

// pageData is what every page template receives.
type pageData struct {
	Title     string
	CSRFToken string
	Shell     *shellData
	// Toast is a one-off status line; ToastError styles it as a failure.
	Toast      string
	ToastError bool
	Data       any
}

func (ui *UI) newPage(r *http.Request, title, navID string, data any) *pageData {
	p := &pageData{
		Title:     title,
		CSRFToken: csrfToken(r),
		Data:      data,
	}
	if id := auth.FromContext(r.Context()); id != nil && navID != "" {
		p.Shell = &shellData{
			Nav:          dashboard.Nav(navID),
			Email:        id.Email,
			BusinessName: id.BusinessName,
			Initial:      id.Initial(),
		}
	}
	return p
}

func (p *pageData) toast(msg string, isError bool) *pageData {
	p.Toast = msg
	p.ToastError = isError
	return p
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (ui *UI) render(w http.ResponseWriter, status int, name string, p *pageData) {
	tmpl, ok := ui.pages[name]
	if !ok {
		ui.logger.Error("unknown template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", p); err != nil {
		ui.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorData struct {
	Status  int
	Message string
}

func (ui *UI) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	p := ui.newPage(r, http.StatusText(status), "none", errorData{Status: status, Message: msg})
	ui.render(w, status, "error", p)
}

// isFetch reports whether the page script sent the request and wants JSON.
func isFetch(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
