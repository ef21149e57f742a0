package installed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"section-hub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister []model.SectionMetadata

func (l staticLister) All() []model.SectionMetadata { return l }

func sampleSections(n int) staticLister {
	out := make(staticLister, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.SectionMetadata{
			ID:           fmt.Sprintf("s-%d", i),
			Name:         fmt.Sprintf("Section %d", i),
			Category:     "Hero",
			Version:      "1.0.0",
			PreviewColor: "#000",
		})
	}
	return out
}

func TestFixtureSource(t *testing.T) {
	report, err := NewFixtureSource(sampleSections(5)).Installed(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Sections, 3)

	assert.Equal(t, "s-0", report.Sections[0].ID)
	assert.Equal(t, "25. Jan 2026", report.Sections[0].InstalledAt)
	assert.Equal(t, "24. Jan 2026", report.Sections[1].InstalledAt)
	assert.Equal(t, "23. Jan 2026", report.Sections[2].InstalledAt)

	assert.False(t, report.Sections[0].HasUpdate)
	assert.True(t, report.Sections[1].HasUpdate)
	assert.Equal(t, "1.1.0", report.Sections[1].LatestVersion)
	assert.Equal(t, "1.0.0", report.Sections[2].LatestVersion)

	assert.Equal(t, []int{3, 2, 1}, []int{
		report.Sections[0].UsageCount,
		report.Sections[1].UsageCount,
		report.Sections[2].UsageCount,
	})
	assert.Equal(t, model.Stats{TotalSections: 3, SectionsWithUpdates: 1, TotalUsage: 6}, report.Stats)
}

func TestFixtureSource_SmallCatalog(t *testing.T) {
	report, err := NewFixtureSource(sampleSections(1)).Installed(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Sections, 1)
	assert.Equal(t, model.Stats{TotalSections: 1, TotalUsage: 3}, report.Stats)

	empty, err := NewFixtureSource(sampleSections(0)).Installed(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty.Sections)
}

func TestLiveSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/installed-sections" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"sections":[
			{"id":"a","name":"A","version":"1.0.0","latestVersion":"1.0.0","usageCount":4},
			{"id":"b","name":"B","version":"1.0.0","latestVersion":"2.0.0","hasUpdate":true,"usageCount":1}]}`)
	}))
	defer srv.Close()

	report, err := NewLiveSource(srv.URL+"/", srv.Client(), nil).Installed(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Sections, 2)
	assert.Equal(t, model.Stats{TotalSections: 2, SectionsWithUpdates: 1, TotalUsage: 5}, report.Stats)
}

func TestLiveSource_ErrorsDoNotFallBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	report, err := NewLiveSource(srv.URL, srv.Client(), nil).Installed(context.Background())
	assert.Nil(t, report)
	assert.Error(t, err)
}

func TestNewSource_SelectsOnce(t *testing.T) {
	_, isFixture := NewSource("", sampleSections(1), nil, nil).(*FixtureSource)
	assert.True(t, isFixture)

	_, isLive := NewSource("http://127.0.0.1:9", sampleSections(1), nil, nil).(*LiveSource)
	assert.True(t, isLive)
}
