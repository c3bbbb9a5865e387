// Package config provides configuration loading and validation for speedchart.
package config

import (
	"time"

	"github.com/ccollicutt/speedchart/pkg/parser"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Input is a glob matching the current and rotated sample logs.
	Input string `yaml:"input"`

	// MaxLines bounds how many of the most recent records are charted.
	// Zero charts every record.
	MaxLines int `yaml:"max_lines"`

	// Scale divides every value field, e.g. 1000 to chart KBps from Bps.
	Scale float64 `yaml:"scale"`

	// Delimiter separates the fields of a record.
	Delimiter string `yaml:"delimiter"`

	Timestamp TimestampConfig `yaml:"timestamp"`
	Chart     ChartConfig     `yaml:"chart"`
	Analysis  AnalysisConfig  `yaml:"analysis,omitempty"`
	Webhooks  []WebhookConfig `yaml:"webhooks,omitempty"`
}

// TimestampConfig defines how the leading field of each record is parsed.
type TimestampConfig struct {
	// Mode is "fixed" (use Layout) or "auto" (detect per record).
	Mode parser.TimestampMode `yaml:"mode"`

	// Layout is a Go time layout or a strftime format such as
	// "%Y-%m-%d %H:%M:%S". Only used in fixed mode.
	// See https://pkg.go.dev/time#pkg-constants for Go layouts.
	Layout string `yaml:"layout"`

	// goLayout is Layout converted to a Go layout (populated during validation).
	goLayout string
}

// GoLayout returns the validated Go layout.
func (t *TimestampConfig) GoLayout() string {
	return t.goLayout
}

// ChartConfig is passed through to the chart renderer.
type ChartConfig struct {
	// Output is the image path. The extension picks the format
	// (.png, .svg, .jpg/.jpeg).
	Output string `yaml:"output"`

	Title  string `yaml:"title"`
	Label  string `yaml:"label"` // series label prefix, numbered from 1
	XLabel string `yaml:"x_label"`
	YLabel string `yaml:"y_label"`

	// Width and Height are in centimeters.
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	// Average adds a dashed running-average line per series.
	Average bool `yaml:"average,omitempty"`

	// TimeFormat is the Go layout for x axis ticks.
	TimeFormat string `yaml:"time_format"`
}

// AnalysisConfig enables sampling checks reported after a render.
type AnalysisConfig struct {
	// MaxGap reports consecutive samples further apart. Zero disables it.
	MaxGap time.Duration `yaml:"max_gap,omitempty"`

	// MinSamples reports runs with fewer valid rows.
	MinSamples int `yaml:"min_samples,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when sampling issues are detected (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every render.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending run reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_issues" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
