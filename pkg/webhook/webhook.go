// Package webhook posts run reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ccollicutt/speedchart/pkg/config"
	"github.com/ccollicutt/speedchart/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = config.DefaultWebhookTimeout

// RunIDHeader carries Report.Metadata.RunID.
const RunIDHeader = "X-Speedchart-Run-ID"

const (
	userAgent       = "speedchart-webhook"
	maxResponseBody = 1024 * 1024
)

// Client sends run reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	logger     log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used by Notify.
func WithLogger(l log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new webhook client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		logger:     log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// ShouldFire reports whether a webhook with trigger fires for a run. An
// empty trigger behaves like on_issues.
func ShouldFire(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasIssues
	}
}

// Delivery records one webhook that fired.
type Delivery struct {
	Name     string
	Response *Response
}

// Notify sends report to every hook whose trigger fires, in order, and
// returns what happened to each. Failures are logged and never returned.
func (c *Client) Notify(ctx context.Context, report *output.Report, hooks []config.WebhookConfig) []Delivery {
	var deliveries []Delivery
	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, report.HasIssues()) {
			continue
		}

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		resp := c.Send(ctx, report, SendOptions{URL: wh.URL, Token: wh.Token, Timeout: wh.Timeout})
		if resp.Success() {
			level.Info(c.logger).Log("msg", "webhook sent", "webhook", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			level.Warn(c.logger).Log("msg", "webhook failed", "webhook", name, "err", resp.Error)
		}
		deliveries = append(deliveries, Delivery{Name: name, Response: resp})
	}
	return deliveries
}

// Send posts report to a single endpoint. Status codes of 400 and above are
// reported as errors.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	resp.StatusCode, resp.Body, resp.Error = c.post(ctx, report, opts)
	resp.Duration = time.Since(start)
	return resp
}

func (c *Client) post(ctx context.Context, report *output.Report, opts SendOptions) (int, string, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal report: %w", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if report.Metadata.RunID != "" {
		req.Header.Set(RunIDHeader, report.Metadata.RunID)
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return httpResp.StatusCode, "", fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return httpResp.StatusCode, string(body), fmt.Errorf("webhook returned status %d", httpResp.StatusCode)
	}
	return httpResp.StatusCode, string(body), nil
}
