package catalog

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"

	"section-hub/internal/model"
	"section-hub/internal/storage"
)

// ErrNotFound is returned by Get for a missing, unreadable or malformed bundle.
var ErrNotFound = errors.New("section not found")

// AllCategories is the pseudo category the UI uses for "no filter".
const AllCategories = "All"

// Catalog provides the read-side queries over the section bundles.
// Every call re-reads the store; nothing is cached between calls.
type Catalog struct {
	store  storage.DataStore
	logger *slog.Logger
}

// New creates a new Catalog instance.
func New(store storage.DataStore, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Catalog{store: store, logger: logger}
}

// Store returns the underlying DataStore instance.
func (c *Catalog) Store() storage.DataStore {
	return c.store
}

// Root returns the catalog root directory of the underlying store.
func (c *Catalog) Root() string {
	if c.store != nil {
		return c.store.GetBasePath()
	}
	return ""
}

// All lists every section with a readable descriptor, most recently updated first.
// Duplicate ids keep the first folder in directory order. It never fails: a store
// error is logged and yields an empty list.
func (c *Catalog) All() []model.SectionMetadata {
	metas, err := c.store.ReadAll()
	if err != nil {
		c.logger.Error("Error loading sections", "root", c.Root(), "error", err)
		return []model.SectionMetadata{}
	}

	seen := make(map[string]struct{}, len(metas))
	sections := make([]model.SectionMetadata, 0, len(metas))
	for _, meta := range metas {
		if meta == nil {
			continue
		}
		if _, dup := seen[meta.ID]; dup {
			c.logger.Warn("Duplicate section id, keeping the first bundle", "id", meta.ID)
			continue
		}
		seen[meta.ID] = struct{}{}
		sections = append(sections, *meta)
	}

	// Timestamps are fixed-width ISO-8601 strings, so string order is time order.
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].UpdatedAt > sections[j].UpdatedAt
	})
	return sections
}

// Get returns one section hydrated with its markup and stylesheet.
// Any failure on the way is reported as ErrNotFound.
func (c *Catalog) Get(sectionID string) (*model.SectionContent, error) {
	if sectionID == "" {
		return nil, ErrNotFound
	}
	section, err := c.store.LoadSectionWithFiles(sectionID)
	if err != nil {
		c.logger.Error("Error loading section", "sectionID", sectionID, "error", err)
		return nil, ErrNotFound
	}
	return section, nil
}

// Categories returns the distinct category labels, sorted.
func (c *Catalog) Categories() []string {
	set := make(map[string]struct{})
	for _, s := range c.All() {
		if s.Category == "" {
			continue
		}
		set[s.Category] = struct{}{}
	}
	categories := make([]string, 0, len(set))
	for category := range set {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// ByCategory returns the sections of one category. "All" or "" returns everything.
func (c *Catalog) ByCategory(category string) []model.SectionMetadata {
	return c.Filter(FilterOptions{Category: category})
}

// Search returns the sections whose name, description, category or any tag
// contains query, ignoring case.
func (c *Catalog) Search(query string) []model.SectionMetadata {
	return c.Filter(FilterOptions{Query: query})
}

// FilterOptions narrows a listing. Zero values mean no restriction.
type FilterOptions struct {
	Query    string
	Category string
	FreeOnly bool
}

// Filter applies category, search and price restrictions to the sorted listing.
func (c *Catalog) Filter(opts FilterOptions) []model.SectionMetadata {
	all := c.All()
	out := make([]model.SectionMetadata, 0, len(all))
	for _, s := range all {
		if !matchesCategory(s, opts.Category) {
			continue
		}
		if opts.Query != "" && !Matches(s, opts.Query) {
			continue
		}
		if opts.FreeOnly && !s.Price.IsFree() {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesCategory(s model.SectionMetadata, category string) bool {
	if category == "" || category == AllCategories {
		return true
	}
	return s.Category == category
}

// Matches reports whether query is a case-insensitive substring of the
// section's name, description, category or one of its tags.
func Matches(s model.SectionMetadata, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Description), q) ||
		strings.Contains(strings.ToLower(s.Category), q) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
