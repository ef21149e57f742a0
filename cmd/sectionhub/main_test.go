package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"section-hub/internal/catalog/catalogtest"
	"section-hub/internal/installer"
	"section-hub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	catalogtest.Hero(t, root)
	catalogtest.Write(t, root, catalogtest.Bundle{
		Meta:   catalogtest.Section("faq-001", "FAQ Accordion", "FAQ", "2026-01-10T10:00:00.000Z"),
		Liquid: catalogtest.Text("<details></details>"),
		CSS:    catalogtest.Text("details{}"),
	})
	return root
}

// execute runs the CLI with args against root and returns stdout.
func execute(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--root", root}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	root := newCatalog(t)

	out, err := execute(t, root, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "hero-001"))
	assert.True(t, strings.HasPrefix(lines[2], "faq-001"))

	out, err = execute(t, root, "list", "--category", "FAQ", "-o", "json")
	require.NoError(t, err)
	var sections []model.SectionMetadata
	require.NoError(t, json.Unmarshal([]byte(out), &sections))
	require.Len(t, sections, 1)
	assert.Equal(t, "faq-001", sections[0].ID)

	_, err = execute(t, root, "list", "-o", "xml")
	assert.Error(t, err)
}

func TestSearchAndCategories(t *testing.T) {
	root := newCatalog(t)

	out, err := execute(t, root, "search", "HERO", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: hero-001")
	assert.NotContains(t, out, "faq-001")

	out, err = execute(t, root, "categories")
	require.NoError(t, err)
	assert.Equal(t, "FAQ\nHero\n", out)
}

func TestShowPayload(t *testing.T) {
	root := newCatalog(t)

	out, err := execute(t, root, "show", "hero-001", "--payload")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{% comment %}\n  Section Hub - Hero — Simple\n"))
	assert.True(t, strings.HasSuffix(out, "<style>h1{color:red}</style>H1"))

	out, err = execute(t, root, "show", "hero-001")
	require.NoError(t, err)
	assert.Contains(t, out, "Hero — Simple")
	assert.Contains(t, out, "section.liquid, style.css")

	_, err = execute(t, root, "show", "missing", "--payload")
	var ie *installer.Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, installer.MsgSectionNotFound, ie.Message)
}

func TestInstall_WithoutShop(t *testing.T) {
	root := newCatalog(t)

	out, err := execute(t, root, "install", "hero-001", "-o", "json")
	require.Error(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Ein Fehler ist aufgetreten"}`, out)
}

func TestNewThenValidate(t *testing.T) {
	root := newCatalog(t)

	out, err := execute(t, root, "new", "--name", "Promo Banner", "--category", "Banner")
	require.NoError(t, err)
	assert.Contains(t, out, "Created section promo-banner")
	assert.DirExists(t, filepath.Join(root, "promo-banner"))

	out, err = execute(t, root, "new", "--from", "hero-001", "--name", "Hero Dark")
	require.NoError(t, err)
	assert.Contains(t, out, "Created section hero-dark")

	out, err = execute(t, root, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   promo-banner")
	assert.Contains(t, out, "ok   hero-dark")

	_, err = execute(t, root, "new", "--name", "Promo Banner")
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestValidate_Broken(t *testing.T) {
	root := newCatalog(t)
	meta := catalogtest.Section("no-css", "No CSS", "Misc", "2026-01-01T00:00:00.000Z")
	catalogtest.Write(t, root, catalogtest.Bundle{Meta: meta, Liquid: catalogtest.Text("x")})

	out, err := execute(t, root, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL no-css")
	assert.Contains(t, out, "ok   hero-001")
	assert.Contains(t, err.Error(), "1 of 3 sections are invalid")
}

func TestConfigRedactsSecrets(t *testing.T) {
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_secret")
	root := newCatalog(t)

	out, err := execute(t, root, "config", "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[catalog]")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "shpat_secret")
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
