package output

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTextFormatter_Format(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"=== Speedchart Report ===",
		"Files: 2 read of 3 matched",
		"Lines: 1,200 scanned, 4 in window, 3 columns",
		"Rows: 3 valid, 1 skipped, 1 field errors",
		"Range: 2024-01-15 10:00:00 to 2024-01-15 10:30:00",
		"[1] min=90.00 max=120.00",
		"[GAP_EXCEEDED] gap of 29m0s",
		"Chart: /var/www/html/speedtest.jpeg",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q\n%s", want, output)
		}
	}

	if strings.Contains(output, "Run:") {
		t.Error("Run ID should only appear in verbose mode")
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"read    /var/log/speed.log (2.0 kB",
		"skipped /var/log/speed.log.2",
		"Run: " + report.Metadata.RunID,
		"Duration: 42ms",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Verbose output missing %q\n%s", want, output)
		}
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "speedchart: 3 rows, 2 columns, 1 issues -> /var/www/html/speedtest.jpeg\n"
	if buf.String() != want {
		t.Errorf("Quiet output = %q, want %q", buf.String(), want)
	}
}

func TestTextFormatter_Format_NoIssues(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := createTestReport()
	report.Issues = nil
	report.Summary.TotalIssues = 0

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "Issues:") {
		t.Error("Issues section should be omitted when there are none")
	}
}
