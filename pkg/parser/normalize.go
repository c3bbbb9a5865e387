package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// padField fills missing trailing fields of ragged rows.
const padField = "0"

// Normalizer converts window lines into a ColumnTable.
type Normalizer struct {
	// Resolver parses the leading timestamp field. Required.
	Resolver TimestampResolver

	// Scale divides every value field. Zero is treated as 1.
	Scale float64

	// Delimiter splits records into fields. Defaults to DefaultDelimiter.
	Delimiter string

	// Logger receives per-row diagnostics. Nil discards them.
	Logger log.Logger
}

// Normalize parses every window line. Rows whose timestamp cannot be
// resolved are logged and dropped; value fields that are not numbers become
// 0 and the row is kept. A table with no rows is reported as ErrNoValidRows.
func (n *Normalizer) Normalize(w *Window) (*ColumnTable, error) {
	return n.NormalizeLines(w.Lines, w.MaxCols)
}

// NormalizeLines is Normalize for lines that did not come from Assemble.
// Every row is padded or cut to maxCols fields, so the table always has
// maxCols-1 columns.
func (n *Normalizer) NormalizeLines(lines []string, maxCols int) (*ColumnTable, error) {
	logger := n.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	delim := n.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	scale := n.Scale
	if scale == 0 {
		scale = 1
	}
	if maxCols < 1 {
		maxCols = 1
	}

	table := &ColumnTable{
		Times:   make([]time.Time, 0, len(lines)),
		Columns: make([][]float64, maxCols-1),
	}
	for j := range table.Columns {
		table.Columns[j] = make([]float64, 0, len(lines))
	}

	for i, line := range lines {
		fields := strings.Split(line, delim)
		for len(fields) < maxCols {
			fields = append(fields, padField)
		}

		ts, err := n.Resolver.Resolve(fields[0])
		if err != nil {
			table.Skipped++
			level.Warn(logger).Log("msg", "skipping row with invalid timestamp", "row", i+1, "line", line, "err", err)
			continue
		}

		table.Times = append(table.Times, ts)
		for j := 1; j < maxCols; j++ {
			raw := strings.TrimSpace(fields[j])
			val, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				table.FieldErrors++
				level.Debug(logger).Log("msg", "invalid value, using 0", "row", i+1, "column", j, "value", raw)
				val = 0
			}
			table.Columns[j-1] = append(table.Columns[j-1], val/scale)
		}
	}

	if len(table.Times) == 0 {
		return nil, ErrNoValidRows
	}

	return table, nil
}
