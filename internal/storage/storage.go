package storage

import "section-hub/internal/model"

// MetaFileName is the descriptor file every bundle folder carries.
const MetaFileName = "meta.json"

// DataStore defines the read operations on the section catalog.
// The catalog is read-only for the application; authoring happens on disk.
type DataStore interface {
	// GetAllSectionIDs returns the names of all bundle folders under the root.
	GetAllSectionIDs() ([]string, error)

	// LoadSection reads and parses the descriptor of one bundle.
	LoadSection(sectionID string) (*model.SectionMetadata, error)

	// LoadSectionWithFiles reads the descriptor plus both referenced content files.
	LoadSectionWithFiles(sectionID string) (*model.SectionContent, error)

	// ReadAll returns every bundle with a readable descriptor, in folder order.
	ReadAll() ([]*model.SectionMetadata, error)

	// GetBasePath returns the catalog root directory.
	GetBasePath() string
}
