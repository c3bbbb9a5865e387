// Package cli provides the command-line interface for speedchart.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/speedchart/internal/cli/commands"
	"github.com/ccollicutt/speedchart/pkg/parser"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitNoChart = 1
	ExitError   = 2
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return ExitOK
}

// exitCode maps the errors that mean "nothing to chart" to ExitNoChart and
// everything else to ExitError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, parser.ErrNoInputFiles),
		errors.Is(err, parser.ErrEmptyWindow),
		errors.Is(err, parser.ErrNoValidRows):
		return ExitNoChart
	default:
		return ExitError
	}
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "speedchart",
		Short: "Chart the most recent samples from rotating speed logs",
		Long: `speedchart reads timestamped numeric records ("time,value,value,...")
from a log file and its rotated predecessors, keeps the most recent
records, and renders them as a multi-series time chart image.

Diagnostics are written to stderr in logfmt; reports go to stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := commands.NewLogger(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			cmd.SetContext(commands.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level ("+strings.Join(commands.LogLevels, "|")+")")

	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
