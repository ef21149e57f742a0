package templating

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"section-hub/internal/installer"
	"section-hub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heroSection() model.SectionContent {
	return model.SectionContent{
		SectionMetadata: model.SectionMetadata{
			ID:           "hero-001",
			Name:         "Hero — Simple",
			Description:  "Großes Banner",
			Category:     "Hero",
			Version:      "1.0.0",
			Price:        model.Price{Type: model.PriceOneTime, Amount: 19, Currency: model.CurrencyEUR},
			Tags:         []string{"Hero", "OS2.0"},
			Author:       "Section Hub",
			PreviewColor: "#1a1a2e",
			Compatibility: model.Compatibility{
				Themes: []string{"Dawn", "Sense"},
				OS2:    true,
			},
			UpdatedAt: time.Now().Add(-72 * time.Hour).UTC().Format(time.RFC3339),
		},
		LiquidContent: `<h1 class="hero">{{ section.settings.title }}</h1>`,
		CSSContent:    `h1 > .hero { color: red; content: "x"; }`,
	}
}

func baseData(page any) map[string]any {
	return map[string]any{
		"CSRFToken":   "token-123",
		"ActiveNav":   "explore",
		"CurrentYear": 2026,
		"Page":        page,
	}
}

func TestNewTemplateCache(t *testing.T) {
	cache, err := NewTemplateCache()
	require.NoError(t, err)
	for _, page := range Pages {
		assert.Contains(t, cache, page)
	}
}

func TestRender_Explore(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	page := struct {
		Sections   []model.SectionMetadata
		Categories []string
		Query      string
		Category   string
		FreeOnly   bool
	}{
		Sections:   []model.SectionMetadata{heroSection().SectionMetadata},
		Categories: []string{"FAQ", "Hero"},
		Query:      "hero",
		Category:   "Hero",
	}

	var buf bytes.Buffer
	require.NoError(t, engine.Render(&buf, "explore.html", baseData(page)))
	html := buf.String()

	assert.Contains(t, html, "Hero — Simple")
	assert.Contains(t, html, "19 EUR one-time")
	assert.Contains(t, html, "3 days ago")
	assert.Contains(t, html, `<option value="Hero" selected>`)
	assert.Contains(t, html, `href="/section/hero-001"`)
}

func TestRender_SectionWithResult(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	section := heroSection()
	page := struct {
		Section     *model.SectionContent
		Result      *installer.Response
		PayloadSize string
	}{
		Section:     &section,
		Result:      &installer.Response{Success: false, Error: "Kein aktives Theme gefunden."},
		PayloadSize: "1.2 kB",
	}

	var buf bytes.Buffer
	require.NoError(t, engine.Render(&buf, "section.html", baseData(page)))
	html := buf.String()

	assert.Contains(t, html, "Kein aktives Theme gefunden.")
	assert.Contains(t, html, `action="/section/hero-001/install"`)
	assert.Contains(t, html, `value="token-123"`)
	assert.Contains(t, html, "Dawn, Sense")
	assert.Contains(t, html, `src="/section/hero-001/preview"`)
}

func TestRender_UnknownPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = engine.Render(&buf, "missing.html", nil)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestPreviewDocument_ContentIsNotEscaped(t *testing.T) {
	section := heroSection()

	doc, err := PreviewDocument(section)
	require.NoError(t, err)

	assert.Contains(t, doc, "<style>"+section.CSSContent+"</style>")
	assert.Contains(t, doc, section.LiquidContent)
	assert.Contains(t, doc, "<title>Hero — Simple · Vorschau</title>")
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
}

func TestHumanizeTimestamp(t *testing.T) {
	assert.Equal(t, "not-a-date", humanizeTimestamp("not-a-date"))
	assert.Equal(t, "2 hours ago", humanizeTimestamp(time.Now().Add(-2*time.Hour).Format(time.RFC3339)))
}
