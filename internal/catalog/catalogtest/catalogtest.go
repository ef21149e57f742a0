// Package catalogtest writes section bundles to disk for tests.
package catalogtest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"section-hub/internal/model"
	"section-hub/internal/storage"

	"github.com/stretchr/testify/require"
)

// Section returns a free section descriptor referencing section.liquid and style.css.
func Section(id, name, category, updatedAt string, tags ...string) model.SectionMetadata {
	return model.SectionMetadata{
		ID:           id,
		Name:         name,
		Description:  name + " section",
		Category:     category,
		Version:      "1.0.0",
		Price:        model.Price{Type: model.PriceFree},
		Tags:         tags,
		Author:       "Section Hub",
		PreviewColor: "#1a1a2e",
		Compatibility: model.Compatibility{
			Themes: []string{"Dawn"},
			OS2:    true,
		},
		Files:     model.Files{Liquid: "section.liquid", CSS: "style.css"},
		CreatedAt: "2026-01-01T00:00:00.000Z",
		UpdatedAt: updatedAt,
	}
}

// Bundle describes one folder to write. Folder defaults to Meta.ID.
// Nil content pointers leave the file out.
type Bundle struct {
	Folder string
	Meta   model.SectionMetadata
	Liquid *string
	CSS    *string
}

// Text returns a pointer to s, for Bundle content fields.
func Text(s string) *string { return &s }

// Write creates the bundle folder under root and returns its path.
func Write(t testing.TB, root string, b Bundle) string {
	t.Helper()
	folder := b.Folder
	if folder == "" {
		folder = b.Meta.ID
	}
	dir := filepath.Join(root, folder)
	require.NoError(t, os.MkdirAll(dir, 0755))

	data, err := json.MarshalIndent(b.Meta, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.MetaFileName), data, 0644))

	if b.Liquid != nil {
		require.NoError(t, os.WriteFile(filepath.Join(dir, b.Meta.Files.Liquid), []byte(*b.Liquid), 0644))
	}
	if b.CSS != nil {
		require.NoError(t, os.WriteFile(filepath.Join(dir, b.Meta.Files.CSS), []byte(*b.CSS), 0644))
	}
	return dir
}

// Hero writes the hero-001 bundle used across the test suites:
// markup "H1" and stylesheet "h1{color:red}".
func Hero(t testing.TB, root string) model.SectionMetadata {
	t.Helper()
	meta := Section("hero-001", "Hero — Simple", "Hero", "2026-01-20T10:00:00.000Z", "Hero", "OS2.0")
	Write(t, root, Bundle{Meta: meta, Liquid: Text("H1"), CSS: Text("h1{color:red}")})
	return meta
}
