package cli

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/speedchart/pkg/parser"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"no input files", fmt.Errorf("%w: /var/log/speed.log*", parser.ErrNoInputFiles), ExitNoChart},
		{"empty window", parser.ErrEmptyWindow, ExitNoChart},
		{"no valid rows", fmt.Errorf("normalize: %w", parser.ErrNoValidRows), ExitNoChart},
		{"other error", errors.New("rendering chart: disk full"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	want := []string{"render", "watch", "detect", "diagnose", "validate", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}

	if cmd.PersistentFlags().Lookup("log-level") == nil {
		t.Error("missing --log-level flag")
	}
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "bogus", "version"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("Execute() error = %v, want invalid log level", err)
	}
}

func TestRootCommand_Version(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "speedchart ") {
		t.Errorf("version output = %q", buf.String())
	}
}

func TestRootCommand_RenderNoInputExitCode(t *testing.T) {
	dir := t.TempDir()

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--log-level", "error",
		"render",
		"--in", filepath.Join(dir, "speed.log*"),
		"--out", filepath.Join(dir, "out.png"),
	})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("Expected error when no log files match")
	}
	if got := exitCode(err); got != ExitNoChart {
		t.Errorf("exitCode() = %d, want %d (err: %v)", got, ExitNoChart, err)
	}
}
