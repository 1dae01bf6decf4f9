// ABOUTME: Help topics embedded as markdown and rendered to HTML with goldmark
// ABOUTME: Topics are listed in a fixed order, unknown ones after, alphabetically

package guide

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed help/*.md
var helpFS embed.FS

// ErrUnknownTopic is returned for a slug with no help document.
var ErrUnknownTopic = errors.New("unknown help topic")

// DefaultTopic is shown when no topic is selected.
const DefaultTopic = "getting-started"

// Topic is one help document.
type Topic struct {
	Slug   string
	Title  string
	Active bool
}

var topicOrder = map[string]int{
	"getting-started": 1,
	"widget":          2,
	"test-agent":      3,
	"leads":           4,
	"metrics":         5,
	"billing":         6,
	"troubleshooting": 7,
}

// Topics lists the help documents, marking selected as active.
func Topics(selected string) ([]Topic, error) {
	entries, err := fs.ReadDir(helpFS, "help")
	if err != nil {
		return nil, fmt.Errorf("listing help topics: %w", err)
	}

	var topics []Topic
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		topics = append(topics, Topic{Slug: slug, Title: titleFor(slug), Active: slug == selected})
	}

	sort.Slice(topics, func(i, j int) bool {
		oi, ok := topicOrder[topics[i].Slug]
		if !ok {
			oi = 100
		}
		oj, ok := topicOrder[topics[j].Slug]
		if !ok {
			oj = 100
		}
		if oi != oj {
			return oi < oj
		}
		return topics[i].Slug < topics[j].Slug
	})
	return topics, nil
}

// Render converts the topic's markdown to HTML.
func Render(slug string) (template.HTML, error) {
	if slug == "" || strings.ContainsAny(slug, "/\\.") {
		return "", fmt.Errorf("%w: %q", ErrUnknownTopic, slug)
	}
	md, err := helpFS.ReadFile(path.Join("help", slug+".md"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownTopic, slug)
	}

	var buf bytes.Buffer
	if err := goldmark.Convert(md, &buf); err != nil {
		return "", fmt.Errorf("rendering help topic %s: %w", slug, err)
	}
	// Help documents are compiled into the binary, so their HTML is trusted.
	return template.HTML(buf.String()), nil
}

func titleFor(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}
