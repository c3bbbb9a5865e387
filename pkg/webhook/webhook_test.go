package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"

	"github.com/ccollicutt/speedchart/pkg/analyzer"
	"github.com/ccollicutt/speedchart/pkg/config"
	"github.com/ccollicutt/speedchart/pkg/output"
)

func newTestReport() *output.Report {
	return &output.Report{
		Summary: output.Summary{
			FilesMatched: 3,
			FilesRead:    2,
			LinesScanned: 1200,
			WindowLines:  120,
			MaxColumns:   3,
			ValidRows:    118,
			SkippedRows:  2,
			TotalIssues:  1,
		},
		Columns: []analyzer.ColumnStats{
			{Index: 1, Min: 10, Max: 120, Mean: 80, Last: 95},
		},
		Issues: []analyzer.Issue{
			{
				Type:        analyzer.IssueTypeGapExceeded,
				Description: "Gap of 30m0s between samples (max allowed: 10m0s)",
			},
		},
		Metadata: output.Metadata{
			RunID:      "5f0c3f52-8f0c-4c5e-9d1a-0b6f4f7f2a11",
			ConfigFile: "speedchart.yaml",
			Output:     "/var/www/html/speedtest.jpeg",
			RenderedAt: time.Now(),
			Duration:   time.Second,
		},
	}
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	var receivedAuth string
	var receivedUserAgent string
	var receivedRunID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedUserAgent = r.Header.Get("User-Agent")
		receivedRunID = r.Header.Get(RunIDHeader)
		receivedAuth = r.Header.Get("Authorization")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL: server.URL,
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}

	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}

	if receivedAuth != "" {
		t.Errorf("expected no auth header, got %s", receivedAuth)
	}

	if receivedUserAgent != "speedchart-webhook" {
		t.Errorf("expected User-Agent speedchart-webhook, got %s", receivedUserAgent)
	}

	if receivedRunID != report.Metadata.RunID {
		t.Errorf("expected run ID header %s, got %s", report.Metadata.RunID, receivedRunID)
	}

	// Verify payload is valid JSON containing expected fields
	var payload map[string]interface{}
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Errorf("failed to parse received payload: %v", err)
	}

	for _, key := range []string{"Summary", "Columns", "Issues", "Metadata"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("payload missing %s field", key)
		}
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL:   server.URL,
		Token: "secret-token-123",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}

	if receivedAuth != "Bearer secret-token-123" {
		t.Errorf("expected Bearer token, got %s", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL: server.URL,
	})

	if resp.Success() {
		t.Error("expected failure, got success")
	}

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure due to timeout")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL: "://invalid-url",
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL:     "http://127.0.0.1:59999", // Unlikely to be listening
		Timeout: 100 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure for connection refused")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name        string
		resp        Response
		wantSuccess bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"400 Bad Request", Response{StatusCode: 400}, false},
		{"500 Server Error", Response{StatusCode: 500}, false},
		{"With Error", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Success(); got != tt.wantSuccess {
				t.Errorf("Success() = %v, want %v", got, tt.wantSuccess)
			}
		})
	}
}

func TestShouldFire(t *testing.T) {
	tests := []struct {
		trigger   config.WebhookTrigger
		hasIssues bool
		want      bool
	}{
		{config.WebhookTriggerAlways, false, true},
		{config.WebhookTriggerAlways, true, true},
		{config.WebhookTriggerNever, true, false},
		{config.WebhookTriggerOnIssues, true, true},
		{config.WebhookTriggerOnIssues, false, false},
		{"", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := ShouldFire(tt.trigger, tt.hasIssues); got != tt.want {
			t.Errorf("ShouldFire(%q, %v) = %v, want %v", tt.trigger, tt.hasIssues, got, tt.want)
		}
	}
}

func TestClient_Notify(t *testing.T) {
	var mu sync.Mutex
	var paths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	hooks := []config.WebhookConfig{
		{Name: "ops", URL: server.URL + "/ops", Trigger: config.WebhookTriggerAlways},
		{URL: server.URL + "/quiet", Trigger: config.WebhookTriggerNever},
		{URL: server.URL + "/broken", Trigger: config.WebhookTriggerOnIssues},
	}

	var buf bytes.Buffer
	client := NewClient(WithLogger(log.NewLogfmtLogger(&buf)))

	deliveries := client.Notify(context.Background(), newTestReport(), hooks)
	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}
	if deliveries[0].Name != "ops" || !deliveries[0].Response.Success() {
		t.Errorf("first delivery = %s %+v", deliveries[0].Name, deliveries[0].Response)
	}
	if deliveries[1].Name != server.URL+"/broken" || deliveries[1].Response.Success() {
		t.Errorf("second delivery = %s %+v", deliveries[1].Name, deliveries[1].Response)
	}
	if strings.Join(paths, ",") != "/ops,/broken" {
		t.Errorf("requests = %v", paths)
	}

	logs := buf.String()
	if !strings.Contains(logs, "webhook sent") || !strings.Contains(logs, "webhook failed") {
		t.Errorf("expected sent and failed log lines, got:\n%s", logs)
	}
}

func TestClient_Notify_NoIssues(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	report := newTestReport()
	report.Summary.TotalIssues = 0

	deliveries := NewClient().Notify(context.Background(), report, []config.WebhookConfig{{URL: server.URL}})
	if len(deliveries) != 0 || called {
		t.Error("on_issues webhook should not fire for a clean run")
	}
}

func TestNewClient_WithHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	if c := NewClient(WithHTTPClient(hc)); c.httpClient != hc {
		t.Error("WithHTTPClient not applied")
	}
	if c := NewClient(WithHTTPClient(nil)); c.httpClient == nil {
		t.Error("nil http client should keep the default")
	}
}
