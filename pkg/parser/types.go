// Package parser assembles the most recent sample records from rotated log
// files and aligns them into fixed-width numeric columns.
package parser

import "time"

// LogSource is a candidate log file found by Discover.
type LogSource struct {
	// Path is the file path as returned by the glob.
	Path string

	// ModTime orders sources; newer files hold newer records.
	ModTime time.Time

	// Size is the file size at discovery time.
	Size int64
}

// Window is the bounded, chronologically ordered set of most recent lines.
type Window struct {
	// Lines are trimmed raw lines, oldest first.
	Lines []string

	// MaxCols is the largest number of delimited fields seen on any line
	// scanned while building the window.
	MaxCols int

	// Files lists the files that were read, newest first.
	Files []string

	// Scanned is the number of lines read across all files, including
	// lines that fell outside the window.
	Scanned int
}

// Len returns the number of lines in the window.
func (w *Window) Len() int {
	return len(w.Lines)
}

// Row is a window line with its timestamp resolved and values scaled.
type Row struct {
	Timestamp time.Time
	Values    []float64
}

// ColumnTable pairs resolved timestamps with one value slice per data column.
// Every column has the same length as Times.
type ColumnTable struct {
	Times   []time.Time
	Columns [][]float64

	// Skipped counts rows dropped because the timestamp did not resolve.
	Skipped int

	// FieldErrors counts value fields that were replaced by 0.
	FieldErrors int
}

// Len returns the number of rows in the table.
func (t *ColumnTable) Len() int {
	return len(t.Times)
}

// Row returns the i-th row of the table.
func (t *ColumnTable) Row(i int) Row {
	values := make([]float64, len(t.Columns))
	for j, col := range t.Columns {
		values[j] = col[i]
	}
	return Row{Timestamp: t.Times[i], Values: values}
}

// First returns the earliest resolved timestamp in window order.
func (t *ColumnTable) First() time.Time {
	if len(t.Times) == 0 {
		return time.Time{}
	}
	return t.Times[0]
}

// Last returns the latest resolved timestamp in window order.
func (t *ColumnTable) Last() time.Time {
	if len(t.Times) == 0 {
		return time.Time{}
	}
	return t.Times[len(t.Times)-1]
}
