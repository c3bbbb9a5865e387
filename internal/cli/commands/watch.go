package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/speedchart/pkg/watch"
)

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	RenderOptions

	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [config-file]",
		Short: "Re-render the chart whenever the logs change",
		Long: `Render the chart once, then again each time a file matching the input
pattern is written, created or rotated. Runs until interrupted.

A failed render is logged and the watch continues.

Example:
  speedchart watch speedchart.yaml
  speedchart watch --in '/var/log/speed.log*' --out /var/www/html/speedtest.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	addChartFlags(cmd, &opts.RenderOptions)

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Report format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-file details and timing")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", true, "Summary only, no details")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "Wait for writes to settle before rendering")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := LoggerFrom(ctx)

	formatter, err := createFormatter(&opts.RenderOptions)
	if err != nil {
		return err
	}

	cfg, configPath, err := loadConfig(cmd, args, &opts.RenderOptions)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(cfg.Input, watch.WithDebounce(opts.Debounce), watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()

	render := func() {
		report, err := renderChart(ctx, cfg, configPath, logger)
		if err != nil {
			level.Error(logger).Log("msg", "render failed", "err", err)
			return
		}
		if err := writeReport(ctx, formatter, report, cmd.OutOrStdout()); err != nil {
			level.Error(logger).Log("msg", "report failed", "err", err)
		}
		sendWebhooks(ctx, cfg, &opts.RenderOptions, report, logger)
	}

	level.Info(logger).Log("msg", "watching for changes", "pattern", cfg.Input)
	render()

	for {
		select {
		case <-ctx.Done():
			level.Info(logger).Log("msg", "watch stopped")
			return nil
		case <-w.Changes():
			render()
		}
	}
}
