// Package output provides formatting and output generation for run reports.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/speedchart/pkg/analyzer"
	"github.com/ccollicutt/speedchart/pkg/parser"
)

// Report is the complete result of one render.
type Report struct {
	// Summary provides aggregate counts.
	Summary Summary

	// Columns holds statistics for each charted column.
	Columns []analyzer.ColumnStats

	// Issues lists sampling problems found in the table.
	Issues []analyzer.Issue

	// Metadata provides context about the run.
	Metadata Metadata
}

// Summary provides aggregate counts.
type Summary struct {
	// FilesMatched is the number of files the input pattern matched.
	FilesMatched int

	// FilesRead is the number of files that contributed to the window.
	FilesRead int

	// LinesScanned counts every line read, including ones outside the window.
	LinesScanned int

	// WindowLines is the number of lines kept for charting.
	WindowLines int

	// MaxColumns is the widest record seen, timestamp included.
	MaxColumns int

	// ValidRows is the number of charted rows.
	ValidRows int

	// SkippedRows had an unparseable timestamp.
	SkippedRows int

	// FieldErrors counts value fields charted as 0 because they were not numbers.
	FieldErrors int

	// FirstSample and LastSample are the timestamps of the first and last rows.
	FirstSample time.Time
	LastSample  time.Time

	// TotalIssues is the number of sampling issues.
	TotalIssues int
}

// Metadata provides context about the run.
type Metadata struct {
	// RunID identifies this render in logs and webhook payloads.
	RunID string

	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string

	// Sources lists the matched log files, newest first.
	Sources []Source

	// Output is the chart image path.
	Output string

	// RenderedAt is when the report was created.
	RenderedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration
}

// Source describes one matched log file.
type Source struct {
	Path    string
	Size    int64
	ModTime time.Time

	// Read is false for files that were not needed to fill the window or
	// could not be opened.
	Read bool
}

// NewReport creates a Report from the results of one run. sources is the
// full discovery result; only those listed in window.Files are marked read.
func NewReport(sources []parser.LogSource, window *parser.Window, table *parser.ColumnTable, result *analyzer.AnalysisResult) *Report {
	read := make(map[string]bool, len(window.Files))
	for _, f := range window.Files {
		read[f] = true
	}

	report := &Report{
		Columns: result.Columns,
		Issues:  result.Issues,
		Summary: Summary{
			FilesMatched: len(sources),
			FilesRead:    len(window.Files),
			LinesScanned: window.Scanned,
			WindowLines:  window.Len(),
			MaxColumns:   window.MaxCols,
			ValidRows:    table.Len(),
			SkippedRows:  table.Skipped,
			FieldErrors:  table.FieldErrors,
			FirstSample:  table.First(),
			LastSample:   table.Last(),
			TotalIssues:  result.TotalIssues(),
		},
		Metadata: Metadata{
			RunID:      uuid.NewString(),
			Sources:    make([]Source, 0, len(sources)),
			RenderedAt: time.Now(),
		},
	}

	for _, src := range sources {
		report.Metadata.Sources = append(report.Metadata.Sources, Source{
			Path:    src.Path,
			Size:    src.Size,
			ModTime: src.ModTime,
			Read:    read[src.Path],
		})
	}

	return report
}

// HasIssues returns true if any issues were detected.
func (r *Report) HasIssues() bool {
	return r.Summary.TotalIssues > 0
}
