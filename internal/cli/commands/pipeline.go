package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ccollicutt/speedchart/pkg/analyzer"
	"github.com/ccollicutt/speedchart/pkg/chart"
	"github.com/ccollicutt/speedchart/pkg/config"
	"github.com/ccollicutt/speedchart/pkg/output"
	"github.com/ccollicutt/speedchart/pkg/parser"
)

// renderChart runs discovery, window assembly, normalization, analysis and
// rendering for cfg, and returns the run report. cfg must be validated.
func renderChart(ctx context.Context, cfg *config.Config, configPath string, logger log.Logger) (*output.Report, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sources, err := parser.Discover(cfg.Input)
	if err != nil {
		return nil, err
	}

	window, err := parser.Assemble(sources, parser.Options{
		MaxLines:  cfg.MaxLines,
		Delimiter: cfg.Delimiter,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	resolver, err := parser.NewTimestampResolver(cfg.Timestamp.Mode, cfg.Timestamp.Layout)
	if err != nil {
		return nil, fmt.Errorf("creating timestamp resolver: %w", err)
	}

	normalizer := &parser.Normalizer{
		Resolver:  resolver,
		Scale:     cfg.Scale,
		Delimiter: cfg.Delimiter,
		Logger:    logger,
	}
	table, err := normalizer.Normalize(window)
	if err != nil {
		return nil, err
	}

	result := analyzer.NewAnalyzer(
		analyzer.WithMaxGap(cfg.Analysis.MaxGap),
		analyzer.WithMinSamples(cfg.Analysis.MinSamples),
	).Analyze(table)

	if err := chart.RenderFile(cfg.Chart.Output, table, chartOptions(cfg.Chart)); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}

	report := output.NewReport(sources, window, table, result)
	report.Metadata.ConfigFile = configPath
	report.Metadata.Output = cfg.Chart.Output
	report.Metadata.Duration = time.Since(start)

	level.Info(logger).Log(
		"msg", "chart written",
		"run_id", report.Metadata.RunID,
		"path", cfg.Chart.Output,
		"rows", table.Len(),
		"columns", len(table.Columns),
		"skipped", table.Skipped,
		"issues", result.TotalIssues(),
	)

	return report, nil
}

func chartOptions(cc config.ChartConfig) chart.Options {
	return chart.Options{
		Title:      cc.Title,
		Label:      cc.Label,
		XLabel:     cc.XLabel,
		YLabel:     cc.YLabel,
		Width:      cc.Width,
		Height:     cc.Height,
		Average:    cc.Average,
		TimeFormat: cc.TimeFormat,
	}
}
