package analyzer

import (
	"fmt"
	"math"
	"time"

	"github.com/ccollicutt/speedchart/pkg/parser"
)

// Analyzer inspects a sample table.
type Analyzer struct {
	maxGap     time.Duration
	minSamples int
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithMaxGap reports consecutive samples further apart than d.
// Zero disables gap detection.
func WithMaxGap(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.maxGap = d
	}
}

// WithMinSamples reports tables with fewer than n rows.
func WithMinSamples(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.minSamples = n
	}
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes column statistics and sampling issues for table.
func (a *Analyzer) Analyze(table *parser.ColumnTable) *AnalysisResult {
	result := &AnalysisResult{
		Columns: make([]ColumnStats, 0, len(table.Columns)),
		Issues:  make([]Issue, 0),
		Metadata: AnalysisMetadata{
			Rows:        table.Len(),
			FirstSample: table.First(),
			LastSample:  table.Last(),
			StartTime:   time.Now(),
		},
	}

	for j, col := range table.Columns {
		result.Columns = append(result.Columns, Summarize(j+1, col))
	}

	for i := 1; i < len(table.Times); i++ {
		prev := table.Times[i-1]
		curr := table.Times[i]
		gap := curr.Sub(prev)

		switch {
		case gap < 0:
			result.Issues = append(result.Issues, Issue{
				Type:        IssueTypeOutOfOrder,
				Description: fmt.Sprintf("Sample at %s is older than the one before it", curr.Format(time.DateTime)),
				Context: IssueContext{
					Row:       i + 1,
					StartTime: prev,
					EndTime:   curr,
					ActualGap: gap,
				},
			})
		case a.maxGap > 0 && gap > a.maxGap:
			result.Issues = append(result.Issues, Issue{
				Type: IssueTypeGapExceeded,
				Description: fmt.Sprintf("Gap of %s between samples (max allowed: %s)",
					gap.Round(time.Second), a.maxGap),
				Context: IssueContext{
					Row:         i + 1,
					StartTime:   prev,
					EndTime:     curr,
					ActualGap:   gap,
					ExpectedGap: a.maxGap,
				},
			})
		}
	}

	if a.minSamples > 0 && table.Len() < a.minSamples {
		result.Issues = append(result.Issues, Issue{
			Type: IssueTypeBelowMinSamples,
			Description: fmt.Sprintf("Only %d samples found (minimum required: %d)",
				table.Len(), a.minSamples),
			Context: IssueContext{
				Samples:     table.Len(),
				MinRequired: a.minSamples,
			},
		})
	}

	result.Metadata.EndTime = time.Now()
	return result
}

// Summarize computes statistics for one column. index is the 1-based field
// position used for labeling.
func Summarize(index int, values []float64) ColumnStats {
	stats := ColumnStats{Index: index}
	if len(values) == 0 {
		return stats
	}

	stats.Min = math.Inf(1)
	stats.Max = math.Inf(-1)
	sum := 0.0
	for _, v := range values {
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
		sum += v
		if v == 0 {
			stats.Zeros++
		}
	}
	stats.Mean = sum / float64(len(values))
	stats.Last = values[len(values)-1]
	return stats
}

// RunningAverage returns the cumulative mean at each position, used for
// trend lines.
func RunningAverage(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		out[i] = sum / float64(i+1)
	}
	return out
}
