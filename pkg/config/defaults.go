package config

import (
	"os"
	"time"

	"github.com/ccollicutt/speedchart/pkg/parser"
)

// Default values for configuration.
const (
	DefaultInput           = "/var/log/speed.log*"
	DefaultMaxLines        = 120
	DefaultScale           = 1.0
	DefaultDelimiter       = ","
	DefaultTimestampLayout = "2006-01-02 15:04:05"
	DefaultOutput          = "/var/www/html/speedtest.jpeg"
	DefaultTitle           = "Speedtest Overview"
	DefaultLabel           = "data-"
	DefaultXLabel          = "Time"
	DefaultYLabel          = "Speed (Bps)"
	DefaultWidth           = 42.0
	DefaultHeight          = 16.0
	DefaultTimeFormat      = "2006-01-02"
	DefaultWebhookTimeout  = 10 * time.Second
)

// Environment variable names.
const (
	EnvInput           = "SPEEDCHART_INPUT"
	EnvTimestampLayout = "SPEEDCHART_TIMESTAMP_LAYOUT"
	EnvOutput          = "SPEEDCHART_OUTPUT"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Input:     DefaultInput,
		MaxLines:  DefaultMaxLines,
		Scale:     DefaultScale,
		Delimiter: DefaultDelimiter,
		Timestamp: TimestampConfig{
			Mode:   parser.TimestampModeFixed,
			Layout: DefaultTimestampLayout,
		},
		Chart: ChartConfig{
			Output:     DefaultOutput,
			Title:      DefaultTitle,
			Label:      DefaultLabel,
			XLabel:     DefaultXLabel,
			YLabel:     DefaultYLabel,
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			TimeFormat: DefaultTimeFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if input := os.Getenv(EnvInput); input != "" {
		c.Input = input
	}
	if layout := os.Getenv(EnvTimestampLayout); layout != "" {
		c.Timestamp.Layout = layout
	}
	if output := os.Getenv(EnvOutput); output != "" {
		c.Chart.Output = output
	}
}
