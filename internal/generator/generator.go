package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"section-hub/internal/model"
	"section-hub/pkg/fsutils"
)

const (
	metaFileName   = "meta.json"
	liquidFileName = "section.liquid"
	cssFileName    = "style.css"

	// timestampLayout matches the fixed-width ISO-8601 form the catalog sorts on.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Config holds the configuration for bundle generation.
type Config struct {
	BaseDir      string            // Catalog root where bundle folders are created (e.g., "app/sections")
	Author       string            // Written to new descriptors
	Version      string            // Initial version of new sections
	PreviewColor string            // Default accent color for the admin cards
	DefaultFiles map[string]string // Content file name -> template
	Now          func() time.Time  // Clock for createdAt/updatedAt
}

// --- Slug Generation ---
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`) // For slugs, allow only lowercase alphanum and hyphen
var multiHyphen = regexp.MustCompile(`-+`)             // To collapse multiple hyphens
var validSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// generateSlug creates a folder-friendly slug from a name.
func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = multiHyphen.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "section"
	}
	return slug
}

// jsonString escapes s for use inside a JSON string literal.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b[1 : len(b)-1])
}

// DefaultGeneratorConfig provides a standard configuration for bundle generation.
func DefaultGeneratorConfig(baseDir string) Config {
	const defaultLiquidContent = `<section class="{{ .CSSClass }}">
  <div class="{{ .CSSClass }}__inner page-width">
    {%- if section.settings.heading != blank -%}
      <h2 class="{{ .CSSClass }}__heading">{{ section.settings.heading | escape }}</h2>
    {%- endif -%}
    {%- if section.settings.text != blank -%}
      <div class="{{ .CSSClass }}__text">{{ section.settings.text }}</div>
    {%- endif -%}
  </div>
</section>

{% schema %}
{
  "name": "{{ .SectionNameJSON }}",
  "tag": "section",
  "settings": [
    { "type": "text", "id": "heading", "label": "Heading", "default": "{{ .SectionNameJSON }}" },
    { "type": "richtext", "id": "text", "label": "Text" }
  ],
  "presets": [{ "name": "{{ .SectionNameJSON }}" }]
}
{% endschema %}
`

	const defaultStyleCSSContent = `.{{ .CSSClass }} {
  padding: 4rem 1.5rem;
}

.{{ .CSSClass }}__heading {
  margin: 0 0 1rem;
}

.{{ .CSSClass }}__text {
  max-width: 60ch;
}
`

	return Config{
		BaseDir:      baseDir,
		Author:       "Section Hub",
		Version:      "1.0.0",
		PreviewColor: "#1a1a2e",
		DefaultFiles: map[string]string{
			liquidFileName: defaultLiquidContent,
			cssFileName:    defaultStyleCSSContent,
		},
		Now: time.Now,
	}
}

func (cfg Config) timestamp() string {
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	return now().UTC().Format(timestampLayout)
}

// GenerateSectionBundle creates <BaseDir>/<slug>/ with a descriptor and the
// default content files. The slug doubles as the section id and is derived
// from the name when empty. An existing folder is never overwritten.
func GenerateSectionBundle(cfg Config, name, category, slug string) (*model.SectionMetadata, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("section name cannot be empty")
	}
	if slug == "" {
		slug = generateSlug(name)
	}
	if !validSlug.MatchString(slug) {
		return nil, fmt.Errorf("invalid slug %q: use lowercase letters, digits and single hyphens", slug)
	}
	if category == "" {
		category = "Custom"
	}

	sectionDir := filepath.Join(cfg.BaseDir, slug)
	if fsutils.DirExists(sectionDir) {
		return nil, fmt.Errorf("section folder %s: %w", sectionDir, os.ErrExist)
	}
	if err := fsutils.CreateDir(sectionDir); err != nil {
		return nil, fmt.Errorf("failed to create section directory %s: %w", sectionDir, err)
	}

	now := cfg.timestamp()
	meta := &model.SectionMetadata{
		ID:           slug,
		Name:         name,
		Description:  "",
		Category:     category,
		Version:      cfg.Version,
		Price:        model.Price{Type: model.PriceFree},
		Tags:         []string{category},
		Author:       cfg.Author,
		PreviewColor: cfg.PreviewColor,
		Compatibility: model.Compatibility{
			Themes: []string{"Dawn"},
			OS2:    true,
		},
		Files:     model.Files{Liquid: liquidFileName, CSS: cssFileName},
		CreatedAt: now,
		UpdatedAt: now,
	}

	replacer := strings.NewReplacer(
		"{{ .SectionNameJSON }}", jsonString(name),
		"{{ .SectionName }}", name,
		"{{ .CSSClass }}", "sh-"+slug,
	)
	for filename, tmpl := range cfg.DefaultFiles {
		filePath := filepath.Join(sectionDir, filename)
		if err := fsutils.WriteNewFile(filePath, []byte(replacer.Replace(tmpl))); err != nil {
			return nil, fmt.Errorf("failed to create default file %s: %w", filePath, err)
		}
	}

	if err := writeMeta(filepath.Join(sectionDir, metaFileName), meta, false); err != nil {
		return nil, err
	}
	return meta, nil
}

// CloneSectionBundle copies an existing bundle under a new id and name.
// Content files are copied as they are; the descriptor gets fresh timestamps.
func CloneSectionBundle(cfg Config, fromID, newID, newName string) (*model.SectionMetadata, error) {
	srcDir := filepath.Join(cfg.BaseDir, fromID)
	if fromID == "" || filepath.Dir(srcDir) != filepath.Clean(cfg.BaseDir) {
		return nil, fmt.Errorf("invalid source section %q", fromID)
	}

	data, err := fsutils.ReadFile(filepath.Join(srcDir, metaFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read source section %s: %w", fromID, err)
	}
	var meta model.SectionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse source section %s: %w", fromID, err)
	}

	if newName == "" {
		newName = meta.Name + " Copy"
	}
	if newID == "" {
		newID = generateSlug(newName)
	}
	if !validSlug.MatchString(newID) {
		return nil, fmt.Errorf("invalid slug %q: use lowercase letters, digits and single hyphens", newID)
	}

	dstDir := filepath.Join(cfg.BaseDir, newID)
	if fsutils.DirExists(dstDir) {
		return nil, fmt.Errorf("section folder %s: %w", dstDir, os.ErrExist)
	}
	if err := fsutils.CopyDir(srcDir, dstDir); err != nil {
		return nil, fmt.Errorf("failed to copy section %s: %w", fromID, err)
	}

	now := cfg.timestamp()
	meta.ID = newID
	meta.Name = newName
	meta.CreatedAt = now
	meta.UpdatedAt = now
	if err := writeMeta(filepath.Join(dstDir, metaFileName), &meta, true); err != nil {
		return nil, err
	}
	return &meta, nil
}

func writeMeta(path string, meta *model.SectionMetadata, overwrite bool) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}
	data = append(data, '\n')

	write := fsutils.WriteNewFile
	if overwrite {
		write = fsutils.WriteToFile
	}
	if err := write(path, data); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("descriptor %s already exists: %w", path, err)
		}
		return fmt.Errorf("failed to write descriptor %s: %w", path, err)
	}
	return nil
}
