package model

// InstalledSection is one entry of the "My Sections" dashboard.
type InstalledSection struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Version       string `json:"version" yaml:"version"`
	LatestVersion string `json:"latestVersion" yaml:"latestVersion"`
	InstalledAt   string `json:"installedAt" yaml:"installedAt"`
	Category      string `json:"category" yaml:"category"`
	PreviewImage  string `json:"previewImage" yaml:"previewImage"`
	PreviewColor  string `json:"previewColor" yaml:"previewColor"`
	HasUpdate     bool   `json:"hasUpdate" yaml:"hasUpdate"`
	UsageCount    int    `json:"usageCount" yaml:"usageCount"`
}

// Stats summarizes the installed sections.
type Stats struct {
	TotalSections       int `json:"totalSections" yaml:"totalSections"`
	SectionsWithUpdates int `json:"sectionsWithUpdates" yaml:"sectionsWithUpdates"`
	TotalUsage          int `json:"totalUsage" yaml:"totalUsage"`
}

// InstalledReport is what an installed-sections data source returns.
type InstalledReport struct {
	Sections []InstalledSection `json:"sections" yaml:"sections"`
	Stats    Stats              `json:"stats" yaml:"stats"`
}

// ComputeStats derives the dashboard numbers from a list of installed sections.
func ComputeStats(sections []InstalledSection) Stats {
	stats := Stats{TotalSections: len(sections)}
	for _, s := range sections {
		if s.HasUpdate {
			stats.SectionsWithUpdates++
		}
		stats.TotalUsage += s.UsageCount
	}
	return stats
}
