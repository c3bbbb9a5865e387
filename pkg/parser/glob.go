package parser

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover expands pattern into the matching regular files, newest first.
// Patterns support doublestar syntax, so "/var/log/**/speed.log*" works.
// Files that disappear between globbing and stat are dropped; directories
// are ignored. An empty result is reported as ErrNoInputFiles.
func Discover(pattern string) ([]LogSource, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	sources := make([]LogSource, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		sources = append(sources, LogSource{
			Path:    match,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInputFiles, pattern)
	}

	SortNewestFirst(sources)
	return sources, nil
}

// SortNewestFirst orders sources by modification time, newest first.
// Equal times fall back to path order, which puts speed.log ahead of
// speed.log.1 for logrotate-style names.
func SortNewestFirst(sources []LogSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if !sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].ModTime.After(sources[j].ModTime)
		}
		return sources[i].Path < sources[j].Path
	})
}
