package installer

import (
	"strings"

	"section-hub/internal/model"
)

const (
	// ThemeSectionsDir is the theme folder installed sections are written to.
	ThemeSectionsDir = "sections"

	provenanceMarker = "Installiert via Section Hub App"
)

// SectionFileName is the theme file name for a section id.
func SectionFileName(sectionID string) string {
	return "section-" + sectionID + ".liquid"
}

// ThemeFilePath is the remote path a section is published under.
func ThemeFilePath(sectionID string) string {
	return ThemeSectionsDir + "/" + SectionFileName(sectionID)
}

// BuildPayload merges a section into a single theme file: a comment banner,
// the stylesheet inline in a <style> block, then the markup. Neither input is
// escaped. The result depends only on the section's name, version and content.
func BuildPayload(section model.SectionContent) string {
	var b strings.Builder
	b.Grow(len(section.CSSContent) + len(section.LiquidContent) + 160)

	b.WriteString("{% comment %}\n")
	b.WriteString("  Section Hub - " + section.Name + "\n")
	b.WriteString("  Version: " + section.Version + "\n")
	b.WriteString("  " + provenanceMarker + "\n")
	b.WriteString("{% endcomment %}\n\n")

	b.WriteString("<style>")
	b.WriteString(section.CSSContent)
	b.WriteString("</style>")
	b.WriteString(section.LiquidContent)
	return b.String()
}

// Payload is a built theme file that has not been published.
type Payload struct {
	SectionID string `json:"sectionId" yaml:"sectionId"`
	Path      string `json:"path" yaml:"path"`
	Content   string `json:"content" yaml:"content"`
}
