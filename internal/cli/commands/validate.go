package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/speedchart/pkg/config"
	"github.com/ccollicutt/speedchart/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a speedchart configuration file without rendering.

Checks:
  - YAML syntax
  - Required fields and value ranges
  - Timestamp mode and layout (strftime layouts are converted)
  - Webhook URLs and triggers
  - Input file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Input:     %s\n", cfg.Input)
	if cfg.MaxLines == 0 {
		fmt.Fprintf(w, "  Max lines: all\n")
	} else {
		fmt.Fprintf(w, "  Max lines: %d\n", cfg.MaxLines)
	}
	fmt.Fprintf(w, "  Scale:     %g\n", cfg.Scale)
	if cfg.Timestamp.Mode == parser.TimestampModeAuto {
		fmt.Fprintf(w, "  Timestamp: auto\n")
	} else {
		fmt.Fprintf(w, "  Timestamp: %s (Go layout %q)\n", cfg.Timestamp.Layout, cfg.Timestamp.GoLayout())
	}
	fmt.Fprintf(w, "  Chart:     %s (%gx%g cm)\n", cfg.Chart.Output, cfg.Chart.Width, cfg.Chart.Height)
	fmt.Fprintf(w, "  Webhooks:  %d\n", len(cfg.Webhooks))

	sources, err := parser.Discover(cfg.Input)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: %v\n", err)
		return nil
	}

	fmt.Fprintf(w, "\nLog files matched: %d (newest first)\n", len(sources))
	for _, src := range sources {
		fmt.Fprintf(w, "  - %s (%s, modified %s)\n",
			src.Path, humanize.Bytes(uint64(max(src.Size, 0))), humanize.Time(src.ModTime))
	}

	return nil
}
