package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DefaultDelimiter separates fields in a sample record.
const DefaultDelimiter = ","

// maxLineSize bounds a single record; longer lines fail the file read.
const maxLineSize = 1024 * 1024

// Options controls window assembly.
type Options struct {
	// MaxLines bounds the window. Zero reads every line of every file.
	MaxLines int

	// Delimiter splits records into fields for column counting.
	// Defaults to DefaultDelimiter.
	Delimiter string

	// Logger receives per-file diagnostics. Nil discards them.
	Logger log.Logger
}

func (o Options) delimiter() string {
	if o.Delimiter == "" {
		return DefaultDelimiter
	}
	return o.Delimiter
}

func (o Options) logger() log.Logger {
	if o.Logger == nil {
		return log.NewNopLogger()
	}
	return o.Logger
}

// Assemble merges the sources, which must be ordered newest first, into a
// window of at most opts.MaxLines lines in chronological order. Files are
// consulted until the window is full; the remaining older files are never
// opened. A file that cannot be opened is logged and skipped.
//
// Each file only needs to contribute the lines that newer files have not
// already filled, so per-file tails are collected newest first and joined
// oldest first once at the end.
func Assemble(sources []LogSource, opts Options) (*Window, error) {
	if len(sources) == 0 {
		return nil, ErrNoInputFiles
	}

	logger := opts.logger()
	delim := opts.delimiter()
	window := &Window{}

	var tails [][]string
	have := 0
	for _, src := range sources {
		if opts.MaxLines > 0 && have >= opts.MaxLines {
			break
		}

		keep := 0
		if opts.MaxLines > 0 {
			keep = opts.MaxLines - have
		}

		tail, err := readTail(src.Path, keep, delim)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				level.Warn(logger).Log("msg", "log file vanished, skipping", "path", src.Path)
			} else {
				level.Warn(logger).Log("msg", "cannot read log file, skipping", "path", src.Path, "err", err)
			}
			continue
		}

		level.Info(logger).Log("msg", "read log file", "path", src.Path, "lines", tail.scanned, "kept", len(tail.lines))

		if tail.maxCols > window.MaxCols {
			window.MaxCols = tail.maxCols
		}
		window.Scanned += tail.scanned
		window.Files = append(window.Files, src.Path)
		tails = append(tails, tail.lines)
		have += len(tail.lines)
	}

	if have == 0 {
		return nil, ErrEmptyWindow
	}

	window.Lines = make([]string, 0, have)
	for i := len(tails) - 1; i >= 0; i-- {
		window.Lines = append(window.Lines, tails[i]...)
	}

	return window, nil
}

// fileTail is the result of scanning one file.
type fileTail struct {
	lines   []string
	maxCols int
	scanned int
}

// readTail scans the whole file, keeping only the last keep lines (all lines
// when keep is zero) while counting fields on every line.
func readTail(path string, keep int, delim string) (*fileTail, error) {
	file, err := os.Open(path) // #nosec G304 -- paths come from the configured glob
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tail := &fileTail{}
	buf := newRing(keep)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		tail.scanned++
		if cols := strings.Count(line, delim) + 1; cols > tail.maxCols {
			tail.maxCols = cols
		}
		buf.push(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	tail.lines = buf.slice()
	return tail, nil
}

// ring holds the most recent lines pushed to it. A zero capacity ring is
// unbounded.
type ring struct {
	buf   []string
	limit int
	next  int
	full  bool
}

func newRing(limit int) *ring {
	r := &ring{limit: limit}
	if limit > 0 {
		r.buf = make([]string, 0, min(limit, 4096))
	}
	return r
}

func (r *ring) push(line string) {
	if r.limit == 0 || len(r.buf) < r.limit {
		r.buf = append(r.buf, line)
		return
	}
	r.buf[r.next] = line
	r.next = (r.next + 1) % r.limit
	r.full = true
}

// slice returns the retained lines oldest first.
func (r *ring) slice() []string {
	if !r.full {
		return r.buf
	}
	out := make([]string, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}
