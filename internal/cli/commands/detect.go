package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/speedchart/pkg/config"
	"github.com/ccollicutt/speedchart/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	Delimiter   string
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect the timestamp format of a log file",
		Long: `Sample a log file and report which timestamp format the leading field
of its records has.

Each sampled record is resolved the way "timestamp: {mode: auto}" would
resolve it: against an ordered list of date, time and datetime formats,
where the first matching format wins. The report shows how many records
each format resolved and a YAML snippet that pins the detected layout.

Optionally generates a starter config file with --write-config.

Example:
  speedchart detect /var/log/speed.log
  speedchart detect --sample 500 --delimiter ';' /var/log/speed.log
  speedchart detect -w speedchart.yaml /var/log/speed.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of lines to sample")
	cmd.Flags().StringVarP(&opts.Delimiter, "delimiter", "d", config.DefaultDelimiter, "Field delimiter")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithDelimiter(opts.Delimiter),
	)

	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(out, result, logFile, opts); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(out, result, logFile, opts)
	default:
		return outputDetectText(out, result, logFile, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Timestamp Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines with timestamps: %d\n", result.ParsedLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No timestamp format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: check the delimiter (--delimiter) and the first field of a few lines.")
		fmt.Fprintln(w, "A custom layout can still be set with timestamp.layout in fixed mode.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines matched)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintf(w, "Parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)

	if result.AmbiguityNote != "" {
		fmt.Fprintf(w, "WARNING: %s\n", result.AmbiguityNote)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "timestamp:")
	fmt.Fprintln(w, "  mode: fixed")
	fmt.Fprintf(w, "  layout: \"%s\"\n", best.Format.Layout)
	fmt.Fprintln(w)

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other formats seen ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%%, %d lines)\n", i+2, m.Format.Name, m.Confidence*100, m.MatchCount)
			fmt.Fprintf(w, "   layout: \"%s\"\n", m.Format.Layout)
			fmt.Fprintf(w, "   sample: %s\n", m.SampleLine)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Records use more than one format; consider \"timestamp: {mode: auto}\".")
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Layout     string  `json:"layout"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File          string      `json:"file"`
	Matches       []JSONMatch `json:"matches"`
	SampledLines  int         `json:"sampled_lines"`
	ParsedLines   int         `json:"parsed_lines"`
	AmbiguityNote string      `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	output := JSONOutput{
		File:          logFile,
		SampledLines:  result.SampledLines,
		ParsedLines:   result.ParsedLines,
		AmbiguityNote: result.AmbiguityNote,
		Matches:       make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1]
	}

	for _, m := range matches {
		output.Matches = append(output.Matches, JSONMatch{
			Name:       m.Format.Name,
			Pattern:    m.Format.PatternStr,
			Layout:     m.Format.Layout,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
			Ambiguous:  m.Format.Ambiguous,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// writeStarterConfig generates a starter config file with the detected format.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	configPath := opts.WriteConfig
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no timestamp format detected")
	}

	content := generateStarterConfig(logFile, opts.Delimiter, result)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template. The input pattern
// covers the sampled file and its rotations.
func generateStarterConfig(logFile, delimiter string, result *detector.DetectionResult) string {
	absLogFile := logFile
	if abs, err := filepath.Abs(logFile); err == nil {
		absLogFile = abs
	}
	if delimiter == "" {
		delimiter = config.DefaultDelimiter
	}

	best := result.BestMatch()
	timestamp := fmt.Sprintf("  mode: fixed\n  layout: %q", best.Format.Layout)
	if len(result.Matches) > 1 {
		timestamp = "  mode: auto"
	}

	return fmt.Sprintf(`# speedchart configuration
# Generated by: speedchart detect
# Detected format: %s (%.0f%% confidence)

input: %q
max_lines: %d
scale: 1
delimiter: %q

timestamp:
%s

chart:
  output: %q
  title: %q
  label: %q
  x_label: %q
  y_label: %q
  width: %g
  height: %g
  average: false
  time_format: %q

# analysis:
#   max_gap: 10m
#   min_samples: 10

# webhooks:
#   - name: dashboard
#     url: https://example.com/hooks/speedchart
#     token: ${SPEEDCHART_WEBHOOK_TOKEN}
#     trigger: on_issues
`, best.Format.Name, best.Confidence*100,
		absLogFile+"*",
		config.DefaultMaxLines,
		delimiter,
		timestamp,
		config.DefaultOutput,
		config.DefaultTitle,
		config.DefaultLabel,
		config.DefaultXLabel,
		config.DefaultYLabel,
		config.DefaultWidth,
		config.DefaultHeight,
		config.DefaultTimeFormat)
}
