package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, opts Options) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	opts.Output = buf
	l, closer, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = closer.Close() })
	return l, buf
}

// --- Level Tests ---

func TestNew_DefaultLevel_Info(t *testing.T) {
	l, buf := newTestLogger(t, Options{})

	l.Info("test info")
	if !strings.Contains(buf.String(), "test info") {
		t.Error("Info message should be logged at default level")
	}

	buf.Reset()

	l.Debug("test debug")
	if strings.Contains(buf.String(), "test debug") {
		t.Error("Debug message should not be logged at default level")
	}
}

func TestNew_DebugFlag(t *testing.T) {
	l, buf := newTestLogger(t, Options{Debug: true})

	l.Debug("test debug message")
	if !strings.Contains(buf.String(), "test debug message") {
		t.Error("Debug message should be logged when Debug=true")
	}
}

func TestNew_LevelString(t *testing.T) {
	l, buf := newTestLogger(t, Options{Level: "warn"})

	l.Info("quiet info")
	l.Warn("loud warn")
	if strings.Contains(buf.String(), "quiet info") {
		t.Error("Info should be filtered at WARN level")
	}
	if !strings.Contains(buf.String(), "loud warn") {
		t.Error("Warn should be logged at WARN level")
	}
}

func TestNew_QuietOverridesDebug(t *testing.T) {
	// Both Debug and Quiet are set - Quiet should take precedence
	l, buf := newTestLogger(t, Options{Debug: true, Quiet: true, Level: "DEBUG"})

	l.Debug("debug message")
	l.Info("info message")
	l.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Error("only errors should be logged when Quiet=true")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error should be logged when Quiet=true")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "LOUD"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"Warning": slog.LevelWarn,
		"WARN":    slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// --- Format Tests ---

func TestNew_JSONFormat(t *testing.T) {
	l, buf := newTestLogger(t, Options{JSON: true})

	l.Info("test message", "blocks", 3)

	output := buf.String()
	if !strings.HasPrefix(output, "{") {
		t.Errorf("JSON format should produce JSON output, got %q", output)
	}
	for _, want := range []string{`"msg":"test message"`, `"level":"INFO"`, `"blocks":3`} {
		if !strings.Contains(output, want) {
			t.Errorf("JSON output missing %s: %s", want, output)
		}
	}
}

func TestNew_TextFormat(t *testing.T) {
	l, buf := newTestLogger(t, Options{})

	l.Info("test message", "run_id", "abc")

	output := buf.String()
	if !strings.Contains(output, "level=INFO") {
		t.Errorf("Text output should contain level=INFO: %q", output)
	}
	if !strings.Contains(output, "run_id=abc") {
		t.Errorf("Text output should contain attributes: %q", output)
	}
}

// --- File Tests ---

func TestNew_FileAppendsAlongsideConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notion_update.log")
	if err := os.WriteFile(path, []byte("earlier line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, buf := newTestLogger(t, Options{File: path})
	l.Info("written twice")

	if !strings.Contains(buf.String(), "written twice") {
		t.Error("console output missing message")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "earlier line\n") {
		t.Errorf("log file should be appended to, got %q", data)
	}
	if !strings.Contains(string(data), "written twice") {
		t.Errorf("log file missing message: %q", data)
	}
}

func TestNew_FileOpenError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "x.log")
	if _, _, err := New(Options{File: path}); err == nil {
		t.Fatal("expected error for unwritable log path")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.Enabled(t.Context(), slog.LevelError) {
		t.Error("discard logger should not be enabled")
	}
}
