// Package installed reports which catalog sections a shop has installed.
package installed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"section-hub/internal/model"
)

// Source returns the installed sections and their stats.
type Source interface {
	Installed(ctx context.Context) (*model.InstalledReport, error)
}

// SectionLister is the part of the catalog the fixture needs.
type SectionLister interface {
	All() []model.SectionMetadata
}

// NewSource picks the live backend when apiURL is set, else the fixture.
// The choice is made once; requests never switch between the two.
func NewSource(apiURL string, sections SectionLister, httpClient *http.Client, logger *slog.Logger) Source {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if strings.TrimSpace(apiURL) == "" {
		logger.Info("Installed sections: using fixture data")
		return &FixtureSource{sections: sections}
	}
	logger.Info("Installed sections: using live API", "url", apiURL)
	return NewLiveSource(apiURL, httpClient, logger)
}

// LiveSource reads the report from <apiURL>/installed-sections.
type LiveSource struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

// NewLiveSource creates a new LiveSource. httpClient may be nil.
func NewLiveSource(apiURL string, httpClient *http.Client, logger *slog.Logger) *LiveSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LiveSource{
		url:    strings.TrimRight(apiURL, "/") + "/installed-sections",
		http:   httpClient,
		logger: logger,
	}
}

// Installed fetches the report. Non-2xx answers and undecodable bodies are errors.
func (s *LiveSource) Installed(ctx context.Context) (*model.InstalledReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch installed sections: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Error("Installed sections API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("installed sections API returned status %d", resp.StatusCode)
	}

	var report model.InstalledReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode installed sections: %w", err)
	}
	if report.Sections == nil {
		report.Sections = []model.InstalledSection{}
	}
	if report.Stats == (model.Stats{}) && len(report.Sections) > 0 {
		report.Stats = model.ComputeStats(report.Sections)
	}
	return &report, nil
}

// fixtureSize is how many catalog sections the fixture reports as installed.
const fixtureSize = 3

// FixtureSource derives a deterministic report from the newest catalog sections.
// The second entry always has an update to 1.1.0 pending.
type FixtureSource struct {
	sections SectionLister
}

// NewFixtureSource creates a new FixtureSource.
func NewFixtureSource(sections SectionLister) *FixtureSource {
	return &FixtureSource{sections: sections}
}

// Installed builds the report. It never fails.
func (s *FixtureSource) Installed(context.Context) (*model.InstalledReport, error) {
	all := s.sections.All()
	if len(all) > fixtureSize {
		all = all[:fixtureSize]
	}

	installed := make([]model.InstalledSection, 0, len(all))
	for i, section := range all {
		latest := section.Version
		if i == 1 {
			latest = "1.1.0"
		}
		installed = append(installed, model.InstalledSection{
			ID:            section.ID,
			Name:          section.Name,
			Version:       section.Version,
			LatestVersion: latest,
			InstalledAt:   fmt.Sprintf("%d. Jan 2026", 25-i),
			Category:      section.Category,
			PreviewImage:  "",
			PreviewColor:  section.PreviewColor,
			HasUpdate:     i == 1,
			UsageCount:    fixtureSize - i,
		})
	}

	return &model.InstalledReport{
		Sections: installed,
		Stats:    model.ComputeStats(installed),
	}, nil
}
