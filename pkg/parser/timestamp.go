package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/ccollicutt/speedchart/pkg/detector"
)

// TimestampMode selects how the leading field of a record is parsed.
type TimestampMode string

const (
	// TimestampModeFixed parses every record with one configured layout.
	TimestampModeFixed TimestampMode = "fixed"
	// TimestampModeAuto picks a layout per record from the detector's
	// ordered format list.
	TimestampModeAuto TimestampMode = "auto"
)

// DefaultTimestampLayout is the layout written by the speed logger.
const DefaultTimestampLayout = "2006-01-02 15:04:05"

// TimestampResolver turns the timestamp field of a record into a time.
type TimestampResolver interface {
	Resolve(field string) (time.Time, error)
}

// NewTimestampResolver creates the resolver for mode. The layout is only
// used in fixed mode and may be a Go layout or a strftime format.
func NewTimestampResolver(mode TimestampMode, layout string) (TimestampResolver, error) {
	switch mode {
	case TimestampModeFixed, "":
		return NewFixedResolver(layout)
	case TimestampModeAuto:
		return NewAutoResolver(detector.New()), nil
	default:
		return nil, fmt.Errorf("invalid timestamp mode %q (must be fixed or auto)", mode)
	}
}

// GoLayout converts a strftime format such as "%Y-%m-%d %H:%M:%S" into the
// equivalent Go layout. Layouts without a '%' are returned unchanged.
func GoLayout(layout string) (string, error) {
	if !strings.Contains(layout, "%") {
		return layout, nil
	}
	converted, err := strftime.Layout(layout)
	if err != nil {
		return "", fmt.Errorf("converting strftime layout %q: %w", layout, err)
	}
	return converted, nil
}

// FixedResolver parses timestamps with a single layout.
type FixedResolver struct {
	layout string
}

// NewFixedResolver creates a resolver for layout. An empty layout selects
// DefaultTimestampLayout.
func NewFixedResolver(layout string) (*FixedResolver, error) {
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	goLayout, err := GoLayout(layout)
	if err != nil {
		return nil, err
	}
	return &FixedResolver{layout: goLayout}, nil
}

// Layout returns the Go layout in use.
func (r *FixedResolver) Layout() string {
	return r.layout
}

// Resolve parses field with the fixed layout.
func (r *FixedResolver) Resolve(field string) (time.Time, error) {
	ts, err := time.Parse(r.layout, strings.TrimSpace(field))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", field, err)
	}
	return ts, nil
}

// AutoResolver parses each timestamp with the first detector format whose
// pattern matches it.
type AutoResolver struct {
	detector *detector.Detector
}

// NewAutoResolver creates a resolver backed by d.
func NewAutoResolver(d *detector.Detector) *AutoResolver {
	return &AutoResolver{detector: d}
}

// Resolve parses field with the first matching format.
func (r *AutoResolver) Resolve(field string) (time.Time, error) {
	ts, _, err := r.detector.Parse(field)
	return ts, err
}
