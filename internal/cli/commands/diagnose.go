package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/speedchart/pkg/config"
	"github.com/ccollicutt/speedchart/pkg/detector"
	"github.com/ccollicutt/speedchart/pkg/parser"
)

// diagnoseSampleLines is how many of the newest records are test-parsed.
const diagnoseSampleLines = 20

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <config-file>",
		Short: "Diagnose common configuration issues",
		Long: `Diagnose common configuration issues.

This command checks your configuration for common problems:
- Config file syntax and structure
- Input file existence and accessibility
- Timestamp parsing of the newest records
- Chart output directory
- Webhook configuration

Example:
  speedchart diagnose speedchart.yaml
  speedchart diagnose -v speedchart.yaml  # verbose output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	results := []DiagnosticResult{}

	result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	sources, result := checkInputFiles(cfg)
	results = append(results, result)

	if len(sources) > 0 {
		results = append(results, checkTimestampParsing(ctx, cfg, sources, opts))
	}

	results = append(results, checkOutputDir(cfg))
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'speedchart detect <log-file> --write-config speedchart.yaml' to generate a starter config",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%s)", path, humanize.Bytes(uint64(info.Size())))
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Input: %s", cfg.Input),
		fmt.Sprintf("Max lines: %d", cfg.MaxLines),
		fmt.Sprintf("Timestamp mode: %s", cfg.Timestamp.Mode),
	}
	return cfg, result
}

func checkInputFiles(cfg *config.Config) ([]parser.LogSource, DiagnosticResult) {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Input: %s", cfg.Input),
	}

	sources, err := parser.Discover(cfg.Input)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		result.Suggests = []string{
			"Check if the log files exist at this path",
			"Verify the glob pattern syntax (doublestar patterns such as /var/log/**/speed.log* are supported)",
		}
		return nil, result
	}

	var total int64
	empty := 0
	for _, src := range sources {
		total += src.Size
		if src.Size == 0 {
			empty++
		}
		result.Details = append(result.Details, fmt.Sprintf("%s (%s, modified %s)",
			src.Path, humanize.Bytes(uint64(max(src.Size, 0))), src.ModTime.Format(time.DateTime)))
	}

	if empty == len(sources) {
		result.Status = "warning"
		result.Message = fmt.Sprintf("All %d matched file(s) are empty", len(sources))
		return sources, result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Matches %d file(s), %s total", len(sources), humanize.Bytes(uint64(max(total, 0))))
	return sources, result
}

func checkTimestampParsing(ctx context.Context, cfg *config.Config, sources []parser.LogSource, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Timestamp Parsing",
	}

	window, err := parser.Assemble(sources, parser.Options{
		MaxLines:  diagnoseSampleLines,
		Delimiter: cfg.Delimiter,
	})
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot sample records: %v", err)
		return result
	}

	resolver, err := parser.NewTimestampResolver(cfg.Timestamp.Mode, cfg.Timestamp.Layout)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return result
	}

	parsed := 0
	var sampleMatch, sampleFail string
	for _, line := range window.Lines {
		field, _, _ := strings.Cut(line, cfg.Delimiter)
		if _, err := resolver.Resolve(field); err == nil {
			parsed++
			if sampleMatch == "" {
				sampleMatch = line
			}
		} else if sampleFail == "" {
			sampleFail = line
		}
	}

	total := window.Len()
	switch {
	case parsed == 0:
		result.Status = "error"
		result.Message = fmt.Sprintf("No timestamps parsed in the newest %d records", total)
		result.Suggests = []string{
			"The timestamp layout may not match your log format",
			"Use 'speedchart detect " + sources[0].Path + "' to find the layout",
		}
		if sampleFail != "" {
			result.Details = []string{"Sample line that didn't parse:", truncate(sampleFail, 80)}
		}

		d := detector.New(detector.WithDelimiter(cfg.Delimiter))
		if detResult := d.DetectFromLines(window.Lines); detResult.HasMatch() {
			best := detResult.BestMatch()
			result.Suggests = append(result.Suggests,
				fmt.Sprintf("Detected format: %s", best.Format.Name),
				fmt.Sprintf("Suggested layout: %s", best.Format.Layout),
			)
		}
	case parsed < total:
		result.Status = "warning"
		result.Message = fmt.Sprintf("Parsed %d/%d of the newest records; the rest will be skipped", parsed, total)
		if sampleFail != "" {
			result.Details = []string{"Sample line that didn't parse:", truncate(sampleFail, 80)}
		}
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("Parsed %d/%d of the newest records (%d columns)", parsed, total, window.MaxCols)
		if opts.Verbose && sampleMatch != "" {
			result.Details = []string{"Sample match:", truncate(sampleMatch, 80)}
		}
	}

	return result
}

func checkOutputDir(cfg *config.Config) DiagnosticResult {
	dir := filepath.Dir(cfg.Chart.Output)
	result := DiagnosticResult{
		Check: fmt.Sprintf("Chart Output: %s", cfg.Chart.Output),
	}

	info, err := os.Stat(dir)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Output directory not accessible: %v", err)
		result.Suggests = []string{"Create the directory or change chart.output"}
		return result
	}
	if !info.IsDir() {
		result.Status = "error"
		result.Message = fmt.Sprintf("%s is not a directory", dir)
		return result
	}

	probe, err := os.CreateTemp(dir, ".speedchart-probe-*")
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Output directory not writable: %v", err)
		result.Suggests = []string{"Check directory permissions"}
		return result
	}
	probe.Close()
	os.Remove(probe.Name())

	result.Status = "ok"
	result.Message = "Output directory is writable"
	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== speedchart Configuration Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before rendering.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nConfiguration is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nConfiguration looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		issues := []string{}
		warnings := []string{}

		// Check URL
		if wh.URL == "" {
			issues = append(issues, "Missing url")
		} else {
			u, err := url.Parse(wh.URL)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
			} else if u.Host == "" {
				issues = append(issues, "URL must have a host")
			}
		}

		// Check trigger
		if wh.Trigger != "" {
			switch wh.Trigger {
			case config.WebhookTriggerOnIssues, config.WebhookTriggerAlways, config.WebhookTriggerNever:
				// Valid
			default:
				issues = append(issues, fmt.Sprintf("Invalid trigger %q (use on_issues, always, or never)", wh.Trigger))
			}
		}

		// Check if token looks like an unexpanded env var
		if strings.HasPrefix(wh.Token, "${") || strings.HasPrefix(wh.Token, "$") {
			warnings = append(warnings, fmt.Sprintf("Token appears to be an unresolved env var: %s", wh.Token))
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else if len(warnings) > 0 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
				}
				if wh.Token != "" {
					result.Details = append(result.Details, "Token: configured")
				}
			}
		}

		results = append(results, result)
	}

	// Optionally test webhook connectivity
	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			if wh.URL == "" {
				continue
			}

			name := wh.Name
			if name == "" {
				name = wh.URL
			}

			result := checkWebhookConnectivity(wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// Just do a HEAD request to check if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	// Any response (even 4xx/5xx) means the server is reachable
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
