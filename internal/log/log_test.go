package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug": "debug",
		"info":  "info",
		"error": "error",
		"off":   "disabled",
		"bogus": "warn",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNewJSONLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "info")
	cl := l.With().Str("component", "dispatch").Logger()
	cl.Info().Msg("hello")
	l.Debug().Msg("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["component"] != "dispatch" || entry["message"] != "hello" {
		t.Errorf("entry = %v", entry)
	}
}

func TestInit_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avash.log")
	if err := Init("info", true, path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	t.Cleanup(func() { Init("warn", false, "") })

	Tracker.Info().Str("tx", "abc").Msg("Transaction accepted")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"component":"tracker"`) {
		t.Errorf("log file = %q", data)
	}
}
