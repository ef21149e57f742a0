package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"section-hub/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTOML  = "toml"
)

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q (want %s)", format, strings.Join(allowed, ", "))
}

// encode writes v as JSON, YAML or TOML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case formatTOML:
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// updatedAgo renders an ISO timestamp as "3 days ago", or the raw value if it does not parse.
func updatedAgo(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}

func writeSections(w io.Writer, format string, sections []model.SectionMetadata) error {
	if format != formatTable {
		return encode(w, format, sections)
	}
	if len(sections) == 0 {
		_, err := fmt.Fprintln(w, "(no sections found)")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tVERSION\tUPDATED")
	for _, s := range sections {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, s.Price.Label(), s.Version, updatedAgo(s.UpdatedAt))
	}
	return tw.Flush()
}

func writeSection(w io.Writer, format string, section *model.SectionContent, payloadSize int) error {
	if format != formatTable {
		return encode(w, format, section)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", section.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", section.Name)
	fmt.Fprintf(tw, "Description:\t%s\n", section.Description)
	fmt.Fprintf(tw, "Category:\t%s\n", section.Category)
	fmt.Fprintf(tw, "Version:\t%s\n", section.Version)
	fmt.Fprintf(tw, "Price:\t%s\n", section.Price.Label())
	fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(section.Tags, ", "))
	fmt.Fprintf(tw, "Author:\t%s\n", section.Author)
	fmt.Fprintf(tw, "Themes:\t%s\n", strings.Join(section.Compatibility.Themes, ", "))
	fmt.Fprintf(tw, "Updated:\t%s (%s)\n", section.UpdatedAt, updatedAgo(section.UpdatedAt))
	fmt.Fprintf(tw, "Files:\t%s, %s\n", section.Files.Liquid, section.Files.CSS)
	fmt.Fprintf(tw, "Theme file size:\t%s\n", humanize.Bytes(uint64(payloadSize)))
	return tw.Flush()
}

func writeInstalled(w io.Writer, format string, report *model.InstalledReport) error {
	if format != formatTable {
		return encode(w, format, report)
	}
	fmt.Fprintf(w, "%d installed, %d with updates, used %d times\n\n",
		report.Stats.TotalSections, report.Stats.SectionsWithUpdates, report.Stats.TotalUsage)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVERSION\tLATEST\tINSTALLED\tUSAGE")
	for _, s := range report.Sections {
		latest := s.LatestVersion
		if s.HasUpdate {
			latest += " (update)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Version, latest, s.InstalledAt, humanize.Comma(int64(s.UsageCount)))
	}
	return tw.Flush()
}
