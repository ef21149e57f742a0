package templating

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"section-hub/internal/model"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages are the admin pages rendered inside layout.html. Each defines "content".
var Pages = []string{
	"dashboard.html",
	"explore.html",
	"section.html",
}

const layoutTemplate = "layout.html"

// funcs are available to every admin template.
var funcs = template.FuncMap{
	"updated": humanizeTimestamp,
	"join":    strings.Join,
}

// humanizeTimestamp renders an ISO-8601 timestamp relative to now ("3 days ago").
// Unparseable values are shown as they are.
func humanizeTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}

// NewTemplateCache parses the layout together with each page.
func NewTemplateCache() (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	for _, page := range Pages {
		ts, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/"+layoutTemplate)
		if err != nil {
			return nil, fmt.Errorf("error parsing layout template: %w", err)
		}
		ts, err = ts.ParseFS(templateFS, "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("error parsing page template %s: %w", page, err)
		}
		cache[page] = ts
	}
	return cache, nil
}

// Engine renders the cached admin pages.
type Engine struct {
	cache map[string]*template.Template
}

// NewEngine creates a new template engine with all pages parsed.
func NewEngine() (*Engine, error) {
	cache, err := NewTemplateCache()
	if err != nil {
		return nil, err
	}
	return &Engine{cache: cache}, nil
}

// Render executes a page into w. The page is rendered into a buffer first so
// a template error never leaves a half-written response.
func (e *Engine) Render(w io.Writer, page string, data any) error {
	ts, ok := e.cache[page]
	if !ok {
		return fmt.Errorf("template %s not found in cache", page)
	}
	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var previewTemplate = template.Must(template.ParseFS(templateFS, "templates/preview.html"))

// previewData marks the bundle content as trusted; it comes from the catalog, not from users.
type previewData struct {
	Name   string
	CSS    template.CSS
	Markup template.HTML
}

// PreviewDocument renders a standalone HTML page with the section's stylesheet
// in <style> and its markup in the body, both unescaped. Liquid tags are not evaluated.
func PreviewDocument(section model.SectionContent) (string, error) {
	var buf bytes.Buffer
	err := previewTemplate.Execute(&buf, previewData{
		Name:   section.Name,
		CSS:    template.CSS(section.CSSContent),
		Markup: template.HTML(section.LiquidContent),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render preview for %s: %w", section.ID, err)
	}
	return buf.String(), nil
}
