// Package detector provides automatic timestamp format detection for the
// leading field of delimited sample records.
package detector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// ErrNoFormat is returned when a value matches none of the known formats.
var ErrNoFormat = errors.New("no known timestamp format matches")

// DetectionResult holds the result of analyzing a log file.
type DetectionResult struct {
	Matches       []FormatMatch // Formats that matched, sorted by confidence descending
	SampledLines  int           // Number of lines sampled
	ParsedLines   int           // Number of lines with a resolved timestamp
	AmbiguityNote string        // Warning about date ordering if applicable
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format     *TimestampFormat
	Confidence float64   // 0.0 to 1.0 (percentage of lines matched)
	MatchCount int       // Number of lines that matched
	SampleLine string    // Example line that matched
	ParsedTime time.Time // Parsed timestamp from sample
}

// Detector resolves timestamps against an ordered list of formats.
type Detector struct {
	formats    []*TimestampFormat
	sampleSize int
	delimiter  string
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithDelimiter sets the field delimiter used to isolate the timestamp field
// when sampling whole lines (default ",").
func WithDelimiter(delim string) Option {
	return func(d *Detector) {
		if delim != "" {
			d.delimiter = delim
		}
	}
}

// WithFormats replaces the built-in format list. Order is preserved.
func WithFormats(formats []*TimestampFormat) Option {
	return func(d *Detector) {
		d.formats = formats
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    DefaultFormats(),
		sampleSize: 100,
		delimiter:  ",",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Formats returns the formats in match order.
func (d *Detector) Formats() []*TimestampFormat {
	return d.formats
}

// Match returns the first format whose pattern matches value, or nil.
// Later formats are never consulted once one matches, even if they would
// also match.
func (d *Detector) Match(value string) *TimestampFormat {
	value = strings.TrimSpace(value)
	for _, format := range d.formats {
		if format.Pattern.MatchString(value) {
			return format
		}
	}
	return nil
}

// Parse resolves value with the first matching format.
func (d *Detector) Parse(value string) (time.Time, *TimestampFormat, error) {
	format := d.Match(value)
	if format == nil {
		return time.Time{}, nil, fmt.Errorf("%w: %q", ErrNoFormat, value)
	}
	ts, err := time.Parse(format.Layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, format, fmt.Errorf("parsing %q as %s: %w", value, format.Name, err)
	}
	return ts, format, nil
}

// DetectFromFile samples a log file and reports which formats resolve its
// timestamp field.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of log lines. Each line contributes to the
// format that Parse would pick for it, so the counts reflect what the
// auto-detect timestamp mode will actually do.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		SampledLines: len(lines),
	}

	if len(lines) == 0 {
		return result
	}

	type formatStats struct {
		format     *TimestampFormat
		order      int
		matchCount int
		sampleLine string
		parsedTime time.Time
	}

	stats := make(map[string]*formatStats)
	order := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		field, _, _ := strings.Cut(line, d.delimiter)
		parsedTime, format, err := d.Parse(field)
		if err != nil {
			continue
		}

		key := format.Name
		if stats[key] == nil {
			stats[key] = &formatStats{
				format:     format,
				order:      order,
				sampleLine: line,
				parsedTime: parsedTime,
			}
			order++
		}
		stats[key].matchCount++
		result.ParsedLines++
	}

	orders := make(map[string]int, len(stats))
	for _, s := range stats {
		orders[s.format.Name] = s.order
		result.Matches = append(result.Matches, FormatMatch{
			Format:     s.format,
			Confidence: float64(s.matchCount) / float64(len(lines)),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
			ParsedTime: s.parsedTime,
		})
	}

	// Sort by confidence descending, then by first appearance
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].Confidence != result.Matches[j].Confidence {
			return result.Matches[i].Confidence > result.Matches[j].Confidence
		}
		return orders[result.Matches[i].Format.Name] < orders[result.Matches[j].Format.Name]
	})

	if len(result.Matches) > 0 && result.Matches[0].Format.Ambiguous {
		result.AmbiguityNote = "This format has date ordering ambiguity (MM/DD vs DD/MM). " +
			"Auto-detection always reads it as listed; " +
			"use timestamp mode \"fixed\" with an explicit layout if your logs differ."
	}

	return result
}

// sampleFile reads up to sampleSize lines from a file.
func (d *Detector) sampleFile(_ context.Context, path string) ([]string, error) {
	file, err := os.Open(path) // #nosec G304 -- path is provided by user via CLI
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() && len(lines) < d.sampleSize {
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			lines = append(lines, trimmed)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
