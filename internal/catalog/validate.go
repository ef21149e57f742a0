package catalog

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks one bundle the way authors need it checked: the descriptor
// parses, its id matches the folder, required fields and the price are valid
// and both content files are present. Browsing never calls this.
func (c *Catalog) Validate(sectionID string) error {
	section, err := c.store.LoadSectionWithFiles(sectionID)
	if err != nil {
		return fmt.Errorf("section %s: %w", sectionID, err)
	}

	var errs []error
	if section.ID != sectionID {
		errs = append(errs, fmt.Errorf("id %q does not match folder %q", section.ID, sectionID))
	}
	if section.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if section.Version == "" {
		errs = append(errs, errors.New("version is empty"))
	}
	if _, err := time.Parse(time.RFC3339, section.UpdatedAt); err != nil {
		errs = append(errs, fmt.Errorf("updatedAt %q is not an ISO-8601 timestamp", section.UpdatedAt))
	}
	if err := section.Price.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("price: %w", err))
	}
	if section.Files.Liquid == "" || section.LiquidContent == "" {
		errs = append(errs, fmt.Errorf("markup file %q is missing or empty", section.Files.Liquid))
	}
	if section.Files.CSS == "" || section.CSSContent == "" {
		errs = append(errs, fmt.Errorf("stylesheet %q is missing or empty", section.Files.CSS))
	}
	return errors.Join(errs...)
}
