package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"section-hub/internal/model"
	"section-hub/pkg/fsutils"
)

// JSONStore implements the DataStore interface over bundle folders.
// Each folder under BasePath holds a meta.json plus the two files it references.
type JSONStore struct {
	// BasePath is the catalog root containing one folder per section.
	BasePath string
	logger   *slog.Logger
}

// NewJSONStore creates a new JSONStore instance.
// Unlike a writable store it does not create the root; a missing root is an empty catalog.
func NewJSONStore(basePath string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &JSONStore{BasePath: basePath, logger: logger}
}

// GetBasePath returns the base path of the JSON store.
func (js *JSONStore) GetBasePath() string {
	return js.BasePath
}

// sectionDir returns the bundle folder for an id, refusing ids that would leave the root.
func (js *JSONStore) sectionDir(sectionID string) (string, error) {
	if sectionID == "" {
		return "", fmt.Errorf("section ID cannot be empty")
	}
	dir := filepath.Join(js.BasePath, sectionID)
	if filepath.Dir(dir) != filepath.Clean(js.BasePath) {
		return "", fmt.Errorf("invalid section ID %q: %w", sectionID, os.ErrNotExist)
	}
	return dir, nil
}

// LoadSection retrieves a section's descriptor from <root>/<id>/meta.json.
// A missing descriptor yields an error wrapping os.ErrNotExist.
func (js *JSONStore) LoadSection(sectionID string) (*model.SectionMetadata, error) {
	dir, err := js.sectionDir(sectionID)
	if err != nil {
		return nil, err
	}
	return js.loadMeta(filepath.Join(dir, MetaFileName))
}

func (js *JSONStore) loadMeta(metaPath string) (*model.SectionMetadata, error) {
	data, err := fsutils.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("section descriptor %s not found: %w", metaPath, err)
		}
		return nil, fmt.Errorf("failed to read section descriptor %s: %w", metaPath, err)
	}

	var meta model.SectionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse section descriptor %s: %w", metaPath, err)
	}
	return &meta, nil
}

// LoadSectionWithFiles loads the descriptor and hydrates both content files.
// A missing, unreadable or out-of-bundle content file becomes an empty string.
func (js *JSONStore) LoadSectionWithFiles(sectionID string) (*model.SectionContent, error) {
	meta, err := js.LoadSection(sectionID)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(js.BasePath, sectionID)

	return &model.SectionContent{
		SectionMetadata: *meta,
		LiquidContent:   js.readContentFile(dir, meta.Files.Liquid, sectionID),
		CSSContent:      js.readContentFile(dir, meta.Files.CSS, sectionID),
	}, nil
}

func (js *JSONStore) readContentFile(dir, relPath, sectionID string) string {
	if relPath == "" {
		return ""
	}
	path := filepath.Join(dir, relPath)
	if !fsutils.IsWithin(dir, path) {
		js.logger.Warn("Content file path escapes bundle folder, ignoring", "sectionID", sectionID, "path", relPath)
		return ""
	}
	content, ok := fsutils.ReadFileOrEmpty(path)
	if !ok {
		js.logger.Debug("Content file missing, using empty content", "sectionID", sectionID, "path", path)
	}
	return content
}

// GetAllSectionIDs lists the immediate subdirectories of the catalog root.
func (js *JSONStore) GetAllSectionIDs() ([]string, error) {
	entries, err := fsutils.ScanDir(js.BasePath)
	if err != nil {
		// A catalog root that doesn't exist is an empty catalog.
		if errors.Is(err, os.ErrNotExist) {
			js.logger.Warn("Sections directory not found", "path", js.BasePath)
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read catalog directory %s: %w", js.BasePath, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

// ReadAll retrieves the descriptors of all bundles.
// Folders without a descriptor are ignored; unreadable or malformed ones are logged and skipped.
func (js *JSONStore) ReadAll() ([]*model.SectionMetadata, error) {
	ids, err := js.GetAllSectionIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to get section IDs: %w", err)
	}

	sections := make([]*model.SectionMetadata, 0, len(ids))
	for _, id := range ids {
		metaPath := filepath.Join(js.BasePath, id, MetaFileName)
		if !fsutils.FileExists(metaPath) {
			continue
		}
		meta, err := js.loadMeta(metaPath)
		if err != nil {
			js.logger.Error("Error loading section", "folder", id, "error", err)
			continue
		}
		sections = append(sections, meta)
	}

	js.logger.Debug("Loaded catalog descriptors", "count", len(sections), "folders", len(ids))
	return sections, nil
}
