package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// writeLogSet writes a current log and one rotation into dir. The rotation
// gets the older modification time. Each record is "timestamp,down,up".
func writeLogSet(t *testing.T, dir string) string {
	t.Helper()

	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	record := func(i int) string {
		ts := start.Add(time.Duration(i) * time.Minute).Format("2006-01-02 15:04:05")
		return fmt.Sprintf("%s,%d,%d", ts, 1000+i*10, 200+i)
	}

	var rotated, current []string
	for i := 0; i < 5; i++ {
		rotated = append(rotated, record(i))
	}
	for i := 5; i < 10; i++ {
		current = append(current, record(i))
	}

	now := time.Now()
	writeFile(t, filepath.Join(dir, "speed.log.1"), strings.Join(rotated, "\n")+"\n", now.Add(-time.Hour))
	writeFile(t, filepath.Join(dir, "speed.log"), strings.Join(current, "\n")+"\n", now)

	return filepath.Join(dir, "speed.log*")
}

func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Failed to set mtime on %s: %v", path, err)
	}
}

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}
