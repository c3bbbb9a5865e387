// Package watch signals when files matching the input pattern change.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DefaultDebounce coalesces bursts of writes from the speed logger and
// logrotate into one change signal.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors the directory holding the input pattern.
type Watcher struct {
	watcher  *fsnotify.Watcher
	pattern  string
	debounce time.Duration
	logger   log.Logger
	onChange chan struct{}
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watcher errors.
func WithLogger(l log.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for pattern. Only the static directory prefix of
// the pattern is watched, so new rotated files are seen as they appear.
func New(pattern string, opts ...Option) (*Watcher, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	dir := filepath.FromSlash(base)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		watcher:  fw,
		pattern:  filepath.ToSlash(pattern),
		debounce: DefaultDebounce,
		logger:   log.NewNopLogger(),
		onChange: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.loop()
	return w, nil
}

// Changes returns a channel that receives a signal when a matching file
// is written, created, renamed or removed.
func (w *Watcher) Changes() <-chan struct{} {
	return w.onChange
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// Matches reports whether name is covered by the watched pattern.
func (w *Watcher) Matches(name string) bool {
	ok, err := doublestar.Match(w.pattern, filepath.ToSlash(name))
	return err == nil && ok
}

func (w *Watcher) loop() {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.Matches(event.Name) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case w.onChange <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			level.Warn(w.logger).Log("msg", "file watch error", "err", err)
		}
	}
}
