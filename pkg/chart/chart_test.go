package chart

import (
	"bytes"
	"errors"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/ccollicutt/speedchart/pkg/parser"
)

func sampleTable() *parser.ColumnTable {
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return &parser.ColumnTable{
		Times: []time.Time{start, start.Add(time.Minute), start.Add(2 * time.Minute)},
		Columns: [][]float64{
			{100, 120, 90},
			{10, 0, 15},
		},
	}
}

func testOptions() Options {
	return Options{
		Title:      "Speedtest Overview",
		Label:      "data-",
		XLabel:     "Time",
		YLabel:     "Speed (Bps)",
		Width:      20,
		Height:     8,
		TimeFormat: "15:04",
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"/var/www/html/speedtest.jpeg", FormatJPEG},
		{"out.JPG", FormatJPEG},
		{"out.svg", FormatSVG},
		{"out.png", FormatPNG},
		{"out.gif", FormatPNG},
		{"out", FormatPNG},
	}

	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestPixels(t *testing.T) {
	if got := Pixels(2.54, 100); got != 100 {
		t.Errorf("Pixels(2.54, 100) = %d, want 100", got)
	}
	if got := Pixels(2.54, 0); got != int(DefaultDPI) {
		t.Errorf("Pixels(2.54, 0) = %d, want %d", got, int(DefaultDPI))
	}
}

func TestBuild_SeriesPerColumn(t *testing.T) {
	ch, err := Build(sampleTable(), testOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(ch.Series) != 2 {
		t.Fatalf("Series = %d, want 2", len(ch.Series))
	}
	for i, want := range []string{"data-1", "data-2"} {
		if got := ch.Series[i].GetName(); got != want {
			t.Errorf("Series[%d] name = %q, want %q", i, got, want)
		}
	}
	if ch.Width != Pixels(20, DefaultDPI) {
		t.Errorf("Width = %d, want %d", ch.Width, Pixels(20, DefaultDPI))
	}
}

func TestBuild_Average(t *testing.T) {
	opts := testOptions()
	opts.Average = true

	ch, err := Build(sampleTable(), opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(ch.Series) != 4 {
		t.Fatalf("Series = %d, want 4 (value + average per column)", len(ch.Series))
	}

	avg, ok := ch.Series[1].(gochart.TimeSeries)
	if !ok {
		t.Fatalf("Series[1] is %T, want TimeSeries", ch.Series[1])
	}
	if len(avg.Style.StrokeDashArray) == 0 {
		t.Error("average series should be dashed")
	}
	want := []float64{100, 110, 310.0 / 3}
	for i, v := range want {
		if avg.YValues[i] != v {
			t.Errorf("average[%d] = %v, want %v", i, avg.YValues[i], v)
		}
	}
}

func TestBuild_SingleRow(t *testing.T) {
	table := &parser.ColumnTable{
		Times:   []time.Time{time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		Columns: [][]float64{{42}},
	}

	ch, err := Build(table, testOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	ts := ch.Series[0].(gochart.TimeSeries)
	if len(ts.XValues) != 2 || len(ts.YValues) != 2 {
		t.Errorf("single row should be padded to two points, got %d/%d", len(ts.XValues), len(ts.YValues))
	}
	if ch.YAxis.Range == nil {
		t.Error("constant values should get an explicit y range")
	}

	var buf bytes.Buffer
	if err := Render(&buf, table, testOptions(), FormatPNG); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}

func TestBuild_NoData(t *testing.T) {
	tests := []struct {
		name  string
		table *parser.ColumnTable
	}{
		{"nil", nil},
		{"no rows", &parser.ColumnTable{Columns: [][]float64{{}}}},
		{"no columns", &parser.ColumnTable{Times: []time.Time{time.Now()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.table, testOptions())
			if !errors.Is(err, ErrNoData) {
				t.Errorf("Build() error = %v, want ErrNoData", err)
			}
		})
	}
}

func TestRender_Formats(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, sampleTable(), testOptions(), FormatPNG); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if _, err := png.Decode(&buf); err != nil {
			t.Errorf("output is not a PNG: %v", err)
		}
	})

	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, sampleTable(), testOptions(), FormatJPEG); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if _, err := jpeg.Decode(&buf); err != nil {
			t.Errorf("output is not a JPEG: %v", err)
		}
	})

	t.Run("svg", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, sampleTable(), testOptions(), FormatSVG); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Error("output is not an SVG document")
		}
	})
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "speedtest.jpeg")

	if err := RenderFile(path, sampleTable(), testOptions()); err != nil {
		t.Fatalf("RenderFile() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output file is empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestRenderFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.png")
	if err := RenderFile(path, sampleTable(), testOptions()); err == nil {
		t.Error("RenderFile() expected error for missing directory")
	}
}
