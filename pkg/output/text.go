package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ccollicutt/speedchart/pkg/analyzer"
)

// sampleLayout formats first/last sample timestamps.
const sampleLayout = "2006-01-02 15:04:05"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "speedchart: %s rows, %d columns, %d issues -> %s\n",
		humanize.Comma(int64(report.Summary.ValidRows)),
		len(report.Columns),
		report.Summary.TotalIssues,
		report.Metadata.Output)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	s := report.Summary

	fmt.Fprintln(w, "=== Speedchart Report ===")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Files: %d read of %d matched\n", s.FilesRead, s.FilesMatched)
	if f.opts.Verbose {
		for _, src := range report.Metadata.Sources {
			status := "skipped"
			if src.Read {
				status = "read"
			}
			fmt.Fprintf(w, "  %-7s %s (%s, modified %s)\n",
				status, src.Path, humanize.Bytes(uint64(max(src.Size, 0))), humanize.Time(src.ModTime))
		}
	}

	fmt.Fprintf(w, "Lines: %s scanned, %s in window, %d columns\n",
		humanize.Comma(int64(s.LinesScanned)),
		humanize.Comma(int64(s.WindowLines)),
		s.MaxColumns)
	fmt.Fprintf(w, "Rows: %s valid, %s skipped, %s field errors\n",
		humanize.Comma(int64(s.ValidRows)),
		humanize.Comma(int64(s.SkippedRows)),
		humanize.Comma(int64(s.FieldErrors)))
	if !s.FirstSample.IsZero() {
		fmt.Fprintf(w, "Range: %s to %s\n",
			s.FirstSample.Format(sampleLayout), s.LastSample.Format(sampleLayout))
	}

	if len(report.Columns) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Columns:")
		for _, col := range report.Columns {
			fmt.Fprintf(w, "  [%d] min=%s max=%s mean=%s last=%s\n",
				col.Index,
				humanize.FormatFloat("#,###.##", col.Min),
				humanize.FormatFloat("#,###.##", col.Max),
				humanize.FormatFloat("#,###.##", col.Mean),
				humanize.FormatFloat("#,###.##", col.Last))
		}
	}

	if len(report.Issues) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Issues: %d\n", len(report.Issues))
		for i := range report.Issues {
			f.formatIssue(&report.Issues[i], w)
		}
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Chart: %s\n", report.Metadata.Output)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Run: %s\n", report.Metadata.RunID)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	}

	return nil
}

func (f *TextFormatter) formatIssue(issue *analyzer.Issue, w io.Writer) {
	ctx := issue.Context
	kind := strings.ToUpper(string(issue.Type))
	switch issue.Type {
	case analyzer.IssueTypeGapExceeded:
		fmt.Fprintf(w, "  - [%s] gap of %s between %s and %s (max allowed: %s)\n",
			kind,
			ctx.ActualGap.Round(time.Second),
			ctx.StartTime.Format(sampleLayout),
			ctx.EndTime.Format(sampleLayout),
			ctx.ExpectedGap)
	case analyzer.IssueTypeOutOfOrder:
		fmt.Fprintf(w, "  - [%s] row %d at %s is older than %s\n",
			kind,
			ctx.Row,
			ctx.EndTime.Format(sampleLayout),
			ctx.StartTime.Format(sampleLayout))
	case analyzer.IssueTypeBelowMinSamples:
		fmt.Fprintf(w, "  - [%s] only %d samples (minimum required: %d)\n",
			kind, ctx.Samples, ctx.MinRequired)
	default:
		fmt.Fprintf(w, "  - %s\n", issue.Description)
	}
}
