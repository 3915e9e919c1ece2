package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "review.log")
	logger, err := New(Options{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("review loaded", zap.String("review_id", "abc"), zap.Int("plies", 42))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{`"msg":"review loaded"`, `"review_id":"abc"`, `"plies":42`, `"level":"info"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %s", line, want)
		}
	}
}

func TestNew_NoSinksIsNop(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("expected no-op logger")
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_TO_CONSOLE", "false")
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_CALLER", "")

	opts := OptionsFromEnv()
	if opts.Level != "warn" || opts.Format != "json" || opts.Console {
		t.Fatalf("opts = %+v", opts)
	}
	if opts.File != filepath.Join("logs", "review.log") {
		t.Fatalf("File = %q", opts.File)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel, "WARNING": zapcore.WarnLevel, "error": zapcore.ErrorLevel,
		"": zapcore.InfoLevel, "bogus": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSet(t *testing.T) {
	t.Cleanup(func() { Set(nil) })
	l := zap.NewExample()
	Set(l)
	if L() != l {
		t.Fatalf("L() did not return the installed logger")
	}
	Set(nil)
	if L() == nil {
		t.Fatalf("Set(nil) left a nil logger")
	}
}
