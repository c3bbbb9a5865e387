package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/speedchart/pkg/parser"
)

// Load reads and validates a configuration file.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := LoadUnvalidated(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadUnvalidated reads a configuration file, or only the defaults when path
// is empty, and applies environment overrides. Callers that apply further
// overrides must call Validate themselves.
func LoadUnvalidated(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

// Validate checks a configuration for errors and resolves the timestamp layout.
func Validate(cfg *Config) error {
	if cfg.Input == "" {
		return errors.New("input: a file pattern is required")
	}

	if cfg.MaxLines < 0 {
		return fmt.Errorf("max_lines: must be >= 0 (0 reads everything), got %d", cfg.MaxLines)
	}

	if cfg.Scale == 0 {
		return errors.New("scale: must not be zero")
	}

	if cfg.Delimiter == "" {
		return errors.New("delimiter: must not be empty")
	}

	if err := validateTimestamp(&cfg.Timestamp); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}

	if err := validateChart(&cfg.Chart); err != nil {
		return fmt.Errorf("chart: %w", err)
	}

	if cfg.Analysis.MaxGap < 0 {
		return errors.New("analysis: max_gap must not be negative")
	}
	if cfg.Analysis.MinSamples < 0 {
		return errors.New("analysis: min_samples must not be negative")
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateTimestamp(tc *TimestampConfig) error {
	switch tc.Mode {
	case "":
		tc.Mode = parser.TimestampModeFixed
	case parser.TimestampModeFixed, parser.TimestampModeAuto:
	default:
		return fmt.Errorf("invalid mode %q (must be fixed or auto)", tc.Mode)
	}

	if tc.Mode == parser.TimestampModeFixed && tc.Layout == "" {
		return errors.New("layout is required in fixed mode")
	}

	if tc.Layout != "" {
		goLayout, err := parser.GoLayout(tc.Layout)
		if err != nil {
			return fmt.Errorf("invalid layout: %w", err)
		}
		tc.goLayout = goLayout
	}

	return nil
}

func validateChart(cc *ChartConfig) error {
	if cc.Output == "" {
		return errors.New("output is required")
	}
	if cc.Width <= 0 || cc.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %gx%g", cc.Width, cc.Height)
	}
	if cc.TimeFormat == "" {
		cc.TimeFormat = DefaultTimeFormat
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
		default:
			return fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnIssues
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
