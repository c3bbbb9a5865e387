package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "speed.log*"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if w.Changes() == nil {
		t.Error("Changes() returned nil channel")
	}
}

func TestNew_BadDirectory(t *testing.T) {
	if _, err := New("/nonexistent/dir/speed.log*"); err == nil {
		t.Error("New should fail for a nonexistent directory")
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "speed[.log")); err == nil {
		t.Error("New should fail for an invalid pattern")
	}
}

func TestWatcher_Matches(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "speed.log*"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	tests := []struct {
		name string
		want bool
	}{
		{"speed.log", true},
		{"speed.log.1", true},
		{"speed.log.2.gz", true},
		{"other.log", false},
	}
	for _, tt := range tests {
		if got := w.Matches(filepath.Join(dir, tt.name)); got != tt.want {
			t.Errorf("Matches(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "speed.log")
	if err := os.WriteFile(logPath, []byte("2024-01-15 10:00:00,1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w, err := New(filepath.Join(dir, "speed.log*"), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(logPath, []byte("2024-01-15 10:01:00,2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for change signal")
	}
}

func TestWatcher_DetectsRotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "speed.log")
	if err := os.WriteFile(logPath, []byte("a\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w, err := New(filepath.Join(dir, "speed.log*"), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	time.Sleep(50 * time.Millisecond)

	if err := os.Rename(logPath, logPath+".1"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for change signal on rotation")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := New(filepath.Join(dir, "speed.log*"), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case <-w.Changes():
		t.Error("unexpected change signal for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
