// Package analyzer computes per-column statistics and sampling issues for a
// normalized sample table.
package analyzer

import (
	"time"
)

// IssueType categorizes detected issues.
type IssueType string

const (
	// IssueTypeGapExceeded indicates consecutive samples further apart than
	// the allowed gap.
	IssueTypeGapExceeded IssueType = "gap_exceeded"

	// IssueTypeOutOfOrder indicates a sample older than the one before it,
	// usually a rotated file with an unexpected modification time.
	IssueTypeOutOfOrder IssueType = "out_of_order"

	// IssueTypeBelowMinSamples indicates fewer rows than required.
	IssueTypeBelowMinSamples IssueType = "below_min_samples"
)

// Issue represents a single detected problem.
type Issue struct {
	// Type categorizes the issue.
	Type IssueType

	// Description is a human-readable summary of the issue.
	Description string

	// Context provides details about where/when the issue occurred.
	Context IssueContext
}

// IssueContext provides detailed information about an issue.
type IssueContext struct {
	// Row is the table row where the issue was detected.
	Row int

	// StartTime is the earlier sample of the pair.
	StartTime time.Time

	// EndTime is the later sample of the pair.
	EndTime time.Time

	// ActualGap is the time between the two samples.
	ActualGap time.Duration

	// ExpectedGap is the maximum allowed gap.
	ExpectedGap time.Duration

	// Samples is the actual row count (for min_samples checks).
	Samples int

	// MinRequired is the minimum required row count.
	MinRequired int
}

// ColumnStats summarizes one data column.
type ColumnStats struct {
	// Index is the 1-based field position in the record.
	Index int

	Min  float64
	Max  float64
	Mean float64
	Last float64

	// Zeros counts values equal to 0, which includes padded and
	// unparseable fields.
	Zeros int
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// Columns holds statistics for each data column, in field order.
	Columns []ColumnStats

	// Issues lists sampling problems, in row order.
	Issues []Issue

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Rows is the number of table rows examined.
	Rows int

	// FirstSample and LastSample bound the table in row order.
	FirstSample time.Time
	LastSample  time.Time

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time
}

// HasIssues returns true if any issues were detected.
func (r *AnalysisResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// TotalIssues returns the number of issues.
func (r *AnalysisResult) TotalIssues() int {
	return len(r.Issues)
}
