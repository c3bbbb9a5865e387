// Package chart renders a normalized sample table as a multi-series time
// chart image.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/ccollicutt/speedchart/pkg/analyzer"
	"github.com/ccollicutt/speedchart/pkg/parser"
)

// ErrNoData is returned when the table has no rows or no value columns.
var ErrNoData = errors.New("nothing to chart")

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatJPEG Format = "jpeg"
)

// DefaultDPI converts the centimeter sizes to pixels.
const DefaultDPI = 100.0

const (
	cmPerInch   = 2.54
	jpegQuality = 90
)

// Options controls chart appearance.
type Options struct {
	Title  string
	Label  string // series name prefix, numbered from 1
	XLabel string
	YLabel string

	// Width and Height are in centimeters.
	Width  float64
	Height float64

	// DPI defaults to DefaultDPI.
	DPI float64

	// Average adds a dashed running-average line after each series.
	Average bool

	// TimeFormat is the Go layout for x axis ticks.
	TimeFormat string
}

// FormatForPath picks the encoding from the file extension. Unknown
// extensions are rendered as PNG.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return FormatSVG
	case ".jpg", ".jpeg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}

// Pixels converts a length in centimeters to pixels at dpi.
func Pixels(cm, dpi float64) int {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return int(math.Round(cm / cmPerInch * dpi))
}

// Build assembles the go-chart definition for table. One series is created
// per value column, in column order.
func Build(table *parser.ColumnTable, opts Options) (*gochart.Chart, error) {
	if table == nil || table.Len() == 0 || len(table.Columns) == 0 {
		return nil, ErrNoData
	}

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	times := table.Times
	if len(times) == 1 {
		// go-chart needs a non-zero x range
		times = []time.Time{times[0], times[0].Add(time.Second)}
	}

	series := make([]gochart.Series, 0, len(table.Columns)*2)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, col := range table.Columns {
		values := col
		if len(values) == 1 {
			values = []float64{values[0], values[0]}
		}
		for _, v := range values {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}

		color := gochart.GetDefaultColor(i)
		name := fmt.Sprintf("%s%d", opts.Label, i+1)
		series = append(series, gochart.TimeSeries{
			Name:    name,
			XValues: times,
			YValues: values,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 1,
			},
		})

		if opts.Average {
			series = append(series, gochart.TimeSeries{
				Name:    name + " avg",
				XValues: times,
				YValues: analyzer.RunningAverage(values),
				Style: gochart.Style{
					StrokeColor:     color,
					StrokeWidth:     1,
					StrokeDashArray: []float64{5, 5},
				},
			})
		}
	}

	yAxis := gochart.YAxis{Name: opts.YLabel}
	if minY == maxY {
		// go-chart refuses a zero y range
		yAxis.Range = &gochart.ContinuousRange{Min: minY - 1, Max: maxY + 1}
	}

	xAxis := gochart.XAxis{Name: opts.XLabel}
	if opts.TimeFormat != "" {
		xAxis.ValueFormatter = gochart.TimeValueFormatterWithFormat(opts.TimeFormat)
	}

	ch := &gochart.Chart{
		Title:  opts.Title,
		Width:  Pixels(opts.Width, dpi),
		Height: Pixels(opts.Height, dpi),
		DPI:    dpi,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis:  xAxis,
		YAxis:  yAxis,
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.LegendLeft(ch)}

	return ch, nil
}

// Render writes the chart for table to w in the given format.
func Render(w io.Writer, table *parser.ColumnTable, opts Options, format Format) error {
	ch, err := Build(table, opts)
	if err != nil {
		return err
	}

	switch format {
	case FormatSVG:
		if err := ch.Render(gochart.SVG, w); err != nil {
			return fmt.Errorf("rendering svg: %w", err)
		}
		return nil
	case FormatJPEG:
		var buf bytes.Buffer
		if err := ch.Render(gochart.PNG, &buf); err != nil {
			return fmt.Errorf("rendering chart: %w", err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("decoding chart: %w", err)
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("encoding jpeg: %w", err)
		}
		return nil
	default:
		if err := ch.Render(gochart.PNG, w); err != nil {
			return fmt.Errorf("rendering png: %w", err)
		}
		return nil
	}
}

// RenderFile renders the chart to path, choosing the format from its
// extension. The image is written to a temporary file in the same directory
// and renamed into place, so a web server never serves a partial image.
func RenderFile(path string, table *parser.ColumnTable, opts Options) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Render(tmp, table, opts, FormatForPath(path)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting output permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
