package parser

import "errors"

// Errors that end a run without producing a chart.
var (
	// ErrNoInputFiles is returned when the input pattern matches no files.
	ErrNoInputFiles = errors.New("no input files")

	// ErrEmptyWindow is returned when the matched files hold no lines.
	ErrEmptyWindow = errors.New("no lines read from input files")

	// ErrNoValidRows is returned when no line has a usable timestamp.
	ErrNoValidRows = errors.New("no rows with a valid timestamp")
)
