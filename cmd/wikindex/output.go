package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"wikindex/internal/indexer"
	"wikindex/internal/service"
	"wikindex/internal/storage"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	// boxStyle for the run summary
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

type runOutput struct {
	RunID      string                  `json:"run_id"`
	RootPath   string                  `json:"root_path"`
	SourceURL  string                  `json:"source_url"`
	Format     string                  `json:"format"`
	DurationMs int64                   `json:"duration_ms"`
	Stats      indexer.Stats           `json:"stats"`
	Resources  []service.ResourceEntry `json:"resources"`
}

func newRunOutput(result *indexer.RunResult) runOutput {
	return runOutput{
		RunID:      result.RunID,
		RootPath:   result.Request.RootPath,
		SourceURL:  result.Request.SourceURL,
		Format:     result.Request.Format,
		DurationMs: result.Duration.Milliseconds(),
		Stats:      result.Stats,
		Resources:  sortedEntries(result),
	}
}

func sortedEntries(result *indexer.RunResult) []service.ResourceEntry {
	entries := make([]service.ResourceEntry, 0, len(result.Resources))
	for name, res := range result.Resources {
		entries = append(entries, service.ResourceEntry{
			Name:        name,
			URI:         res.URI(),
			Breadcrumbs: res.Breadcrumbs(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// renderRun writes the summary box and page table of a completed run. A
// positive limit truncates the table.
func renderRun(w io.Writer, result *indexer.RunResult, limit int) {
	stats := result.Stats
	summary := fmt.Sprintf("%s %s\n%s %s  %s %s\n%s %d pages, %d trails\n%s min %d  max %d  mean %.2f  p95 %d\n%s %s",
		dimStyle.Render("Run:"), titleStyle.Render(result.RunID),
		dimStyle.Render("Format:"), result.Request.Format,
		dimStyle.Render("Source:"), result.Request.SourceURL,
		dimStyle.Render("Indexed:"), stats.Resources, stats.Trails,
		dimStyle.Render("Depth:"), stats.Depth.Min, stats.Depth.Max, stats.Depth.Mean, stats.Depth.P95,
		dimStyle.Render("Took:"), successStyle.Render(result.Duration.Round(time.Millisecond).String()),
	)
	fmt.Fprintln(w, boxStyle.Render(summary))

	entries := sortedEntries(result)
	if len(entries) == 0 {
		return
	}
	hidden := 0
	if limit > 0 && len(entries) > limit {
		hidden = len(entries) - limit
		entries = entries[:limit]
	}

	t := newTable("NAME", "BREADCRUMBS", "URI")
	for _, e := range entries {
		t.Row(e.Name, e.Breadcrumbs, e.URI)
	}
	fmt.Fprintln(w, t.Render())
	if hidden > 0 {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("... %d more", hidden)))
	}
}

func renderEntry(w io.Writer, entry service.ResourceEntry) {
	crumbs := entry.Breadcrumbs
	if crumbs == "" {
		crumbs = "(top level)"
	}
	fmt.Fprintf(w, "%s\n%s %s\n%s %s\n",
		titleStyle.Render(entry.Name),
		dimStyle.Render("URI:"), entry.URI,
		dimStyle.Render("Breadcrumbs:"), crumbs,
	)
}

func renderRuns(w io.Writer, runs []storage.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No runs stored yet."))
		return
	}
	t := newTable("RUN", "CREATED", "FORMAT", "PAGES", "ROOT")
	for _, r := range runs {
		t.Row(r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Format, fmt.Sprint(r.ResourceCount), r.RootPath)
	}
	fmt.Fprintln(w, t.Render())
}
