package repl

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/Klingon-tech/avash/internal/command"
	"github.com/Klingon-tech/avash/internal/dispatch"
)

type fakeDispatcher struct {
	lines  []string
	active string
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, line string) error {
	f.lines = append(f.lines, line)
	switch line {
	case "exit":
		if f.active == "" {
			return dispatch.ErrExit
		}
		f.active = ""
	case "avm":
		f.active = "avm"
	}
	return nil
}

func (f *fakeDispatcher) ActiveContext() string { return f.active }

func noop(context.Context, []any) error { return nil }

func testRegistry(t *testing.T) *command.Registry {
	t.Helper()
	r := command.NewRegistry()
	err := r.Register(
		command.Direct("avm", "getBalance", "", noop),
		command.Direct("avm", "getAllBalances", "", noop),
		command.Direct("avm", "send", "", noop),
		command.Direct("info", "nodeId", "", noop),
	)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	return r
}

func TestREPL_RunLinesUntilExit(t *testing.T) {
	d := &fakeDispatcher{}
	r := New(Config{
		Dispatcher: d,
		In:         strings.NewReader("avm\ngetBalance x\nexit\nexit\nnever\n"),
		Out:        &bytes.Buffer{},
	})

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := []string{"avm", "getBalance x", "exit", "exit"}
	if !reflect.DeepEqual(d.lines, want) {
		t.Errorf("dispatched %q, want %q", d.lines, want)
	}
}

func TestREPL_RunLinesEOF(t *testing.T) {
	d := &fakeDispatcher{}
	r := New(Config{Dispatcher: d, In: strings.NewReader("info nodeId"), Out: &bytes.Buffer{}})
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(d.lines) != 1 {
		t.Errorf("dispatched %d lines, want 1", len(d.lines))
	}
}

func TestREPL_Prompt(t *testing.T) {
	d := &fakeDispatcher{}
	r := New(Config{Dispatcher: d})
	if got := r.Prompt(); got != "avash> " {
		t.Errorf("Prompt() = %q", got)
	}
	d.active = "avm"
	if got := r.Prompt(); !strings.Contains(got, "avm") || !strings.HasSuffix(got, "> ") {
		t.Errorf("Prompt() in context = %q", got)
	}
}

func TestREPL_NotifyWithoutTerminal(t *testing.T) {
	out := &bytes.Buffer{}
	r := New(Config{Dispatcher: &fakeDispatcher{}, Out: out})
	r.Notify("Transaction abc accepted")
	if out.String() != "Transaction abc accepted\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCandidates(t *testing.T) {
	r := testRegistry(t)
	tests := []struct {
		name   string
		active string
		line   string
		want   []string
	}{
		{"context prefix", "", "a", []string{"avm"}},
		{"empty global", "", "", []string{"avm", "exit", "help", "info"}},
		{"command in context", "", "avm get", []string{"getAllBalances", "getBalance"}},
		{"active context command", "avm", "se", []string{"send"}},
		{"help topic", "", "help i", []string{"info"}},
		{"unknown context", "", "nope g", nil},
		{"third token", "", "avm send x", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(r, tt.active, tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	r := testRegistry(t)

	line, pos, ok := complete(r, "", "avm getB", 8)
	if !ok || line != "avm getBalance " || pos != len(line) {
		t.Errorf("unique: %q %d %v", line, pos, ok)
	}

	line, _, ok = complete(r, "", "avm g", 5)
	if !ok || line != "avm get" {
		t.Errorf("common prefix: %q %v", line, ok)
	}

	if _, _, ok := complete(r, "", "avm get", 7); ok {
		t.Error("ambiguous prefix with nothing to add should not complete")
	}

	line, pos, ok = complete(r, "", "in x", 2)
	if !ok || line != "info  x" || pos != 5 {
		t.Errorf("mid-line: %q %d %v", line, pos, ok)
	}
}
