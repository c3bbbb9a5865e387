package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/speedchart/pkg/config"
	"github.com/ccollicutt/speedchart/pkg/output"
	"github.com/ccollicutt/speedchart/pkg/parser"
	"github.com/ccollicutt/speedchart/pkg/webhook"
)

// RenderOptions holds command-line options for the render command.
type RenderOptions struct {
	Output  string
	Verbose bool
	Quiet   bool

	// Overrides for config values, applied only when the flag is set.
	Input      string
	ChartOut   string
	MaxLines   int
	Scale      float64
	Delimiter  string
	Title      string
	Label      string
	XLabel     string
	YLabel     string
	Width      float64
	Height     float64
	Average    bool
	AutoTime   bool
	TimeLayout string

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render [config-file]",
		Short: "Render a chart from the most recent log records",
		Long: `Read the newest records from the current and rotated log files and
render them as a time chart.

Files matching the input pattern are read newest first until the window
holds max_lines records. Each record is "timestamp,value,value,...";
every value column becomes one chart series.

The config file is optional. Flags override config values.

Exit codes:
  0 - Chart written
  1 - No chart: no input files, no lines, or no valid rows
  2 - Configuration or runtime error

Example:
  speedchart render speedchart.yaml
  speedchart render --in '/var/log/speed.log*' --out speed.png --lines 200 -x 1000 --ylabel "Speed (KBps)"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	addChartFlags(cmd, opts)

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Report format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-file details and timing")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

// addChartFlags registers the config override flags shared by render and watch.
func addChartFlags(cmd *cobra.Command, opts *RenderOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.Input, "in", config.DefaultInput, "Glob matching the current and rotated log files")
	f.StringVar(&opts.ChartOut, "out", config.DefaultOutput, "Chart image path (.png, .svg, .jpg)")
	f.IntVar(&opts.MaxLines, "lines", config.DefaultMaxLines, "Number of most recent records to chart (0 for all)")
	f.Float64VarP(&opts.Scale, "scale", "x", config.DefaultScale, "Divide every value by this factor")
	f.StringVar(&opts.Delimiter, "delimiter", config.DefaultDelimiter, "Field delimiter")
	f.StringVar(&opts.Title, "title", config.DefaultTitle, "Chart title")
	f.StringVar(&opts.Label, "label", config.DefaultLabel, "Series label prefix")
	f.StringVar(&opts.XLabel, "xlabel", config.DefaultXLabel, "X axis label")
	f.StringVar(&opts.YLabel, "ylabel", config.DefaultYLabel, "Y axis label")
	f.Float64Var(&opts.Width, "width", config.DefaultWidth, "Chart width in centimeters")
	f.Float64Var(&opts.Height, "height", config.DefaultHeight, "Chart height in centimeters")
	f.BoolVar(&opts.Average, "avrg", false, "Draw a dashed running average per series")
	f.BoolVar(&opts.AutoTime, "auto-time", false, "Detect the timestamp format of each record")
	f.StringVar(&opts.TimeLayout, "time-layout", config.DefaultTimestampLayout, "Timestamp layout (Go layout or strftime)")
}

// loadConfig loads the optional config file, applies flag overrides and
// validates the result.
func loadConfig(cmd *cobra.Command, args []string, opts *RenderOptions) (*config.Config, string, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath := ""
	if len(args) > 0 {
		configPath = args[0]
	}

	cfg, err := config.LoadUnvalidated(ctx, configPath)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}

	applyFlagOverrides(cmd, cfg, opts)

	if err := config.Validate(cfg); err != nil {
		return nil, "", fmt.Errorf("validating config: %w", err)
	}

	return cfg, configPath, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, opts *RenderOptions) {
	changed := cmd.Flags().Changed

	if changed("in") {
		cfg.Input = opts.Input
	}
	if changed("out") {
		cfg.Chart.Output = opts.ChartOut
	}
	if changed("lines") {
		cfg.MaxLines = opts.MaxLines
	}
	if changed("scale") {
		cfg.Scale = opts.Scale
	}
	if changed("delimiter") {
		cfg.Delimiter = opts.Delimiter
	}
	if changed("title") {
		cfg.Chart.Title = opts.Title
	}
	if changed("label") {
		cfg.Chart.Label = opts.Label
	}
	if changed("xlabel") {
		cfg.Chart.XLabel = opts.XLabel
	}
	if changed("ylabel") {
		cfg.Chart.YLabel = opts.YLabel
	}
	if changed("width") {
		cfg.Chart.Width = opts.Width
	}
	if changed("height") {
		cfg.Chart.Height = opts.Height
	}
	if changed("avrg") {
		cfg.Chart.Average = opts.Average
	}
	if changed("time-layout") {
		cfg.Timestamp.Mode = parser.TimestampModeFixed
		cfg.Timestamp.Layout = opts.TimeLayout
	}
	if changed("auto-time") && opts.AutoTime {
		cfg.Timestamp.Mode = parser.TimestampModeAuto
	}
}

func runRender(cmd *cobra.Command, args []string, opts *RenderOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := LoggerFrom(ctx)

	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}

	cfg, configPath, err := loadConfig(cmd, args, opts)
	if err != nil {
		return err
	}

	report, err := renderChart(ctx, cfg, configPath, logger)
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Webhook failures are logged and never fail the render
	sendWebhooks(ctx, cfg, opts, report, logger)

	return nil
}

func createFormatter(opts *RenderOptions) (output.Formatter, error) {
	return output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
}

// writeReport is used by watch, which keeps going after a failed render.
func writeReport(ctx context.Context, formatter output.Formatter, report *output.Report, w io.Writer) error {
	if err := formatter.Format(ctx, report, w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}

// sendWebhooks sends the report to all configured webhooks.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *RenderOptions, report *output.Report, logger log.Logger) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}
	webhook.NewClient(webhook.WithLogger(logger)).Notify(ctx, report, webhooks)
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *RenderOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
