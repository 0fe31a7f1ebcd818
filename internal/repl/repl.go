// Package repl is the interactive front end: it reads lines from the
// terminal, hands them to the dispatcher and prints async notifications
// without corrupting the line being edited.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/Klingon-tech/avash/internal/command"
	"github.com/Klingon-tech/avash/internal/dispatch"
	klog "github.com/Klingon-tech/avash/internal/log"
)

// Dispatcher executes one input line.
type Dispatcher interface {
	HandleCommand(ctx context.Context, line string) error
	ActiveContext() string
}

// Config wires a REPL.
type Config struct {
	Dispatcher Dispatcher
	Registry   *command.Registry
	// History, when set, backs arrow-key recall on a terminal.
	History term.History
	In      io.Reader
	Out     io.Writer
	Name    string
}

// REPL reads and dispatches lines until exit or EOF.
type REPL struct {
	cfg Config

	mu   sync.Mutex
	term *term.Terminal
}

var contextColor = color.New(color.FgCyan).SprintFunc()

// New creates a REPL. In and Out default to the process stdio.
func New(cfg Config) *REPL {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Name == "" {
		cfg.Name = "avash"
	}
	return &REPL{cfg: cfg}
}

// Prompt returns the prompt for the active context.
func (r *REPL) Prompt() string {
	if active := r.cfg.Dispatcher.ActiveContext(); active != "" {
		return fmt.Sprintf("%s %s> ", r.cfg.Name, contextColor(active))
	}
	return r.cfg.Name + "> "
}

// Notify prints msg on its own line. While a line is being edited the
// terminal redraws the prompt and pending input after it.
func (r *REPL) Notify(msg string) {
	r.mu.Lock()
	t := r.term
	r.mu.Unlock()

	if t != nil {
		fmt.Fprintln(t, msg)
		return
	}
	fmt.Fprintln(r.cfg.Out, msg)
}

// IsTerminal reports whether in is an interactive terminal.
func IsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run reads lines until the operator exits, input ends or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if IsTerminal(r.cfg.In) {
		return r.runTerminal(ctx, int(r.cfg.In.(*os.File).Fd()))
	}
	return r.runLines(ctx)
}

func (r *REPL) runTerminal(ctx context.Context, fd int) error {
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{r.cfg.In, r.cfg.Out}, r.Prompt())
	if r.cfg.History != nil {
		t.History = r.cfg.History
	}
	if r.cfg.Registry != nil {
		t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
			if key != '\t' {
				return "", 0, false
			}
			return complete(r.cfg.Registry, r.cfg.Dispatcher.ActiveContext(), line, pos)
		}
	}
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h)
	}

	r.mu.Lock()
	r.term = t
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.term = nil
		r.mu.Unlock()
	}()

	klog.Shell.Debug().Msg("Interactive terminal session started")
	for ctx.Err() == nil {
		t.SetPrompt(r.Prompt())
		line, err := r.readRaw(fd, t)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if r.handle(ctx, line) {
			return nil
		}
	}
	return nil
}

// readRaw puts the terminal in raw mode only while a line is edited so
// commands and their prompts see a normal terminal.
func (r *REPL) readRaw(fd int, t *term.Terminal) (string, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return "", fmt.Errorf("enable raw mode: %w", err)
	}
	defer term.Restore(fd, state)
	return t.ReadLine()
}

func (r *REPL) runLines(ctx context.Context) error {
	scanner := bufio.NewScanner(r.cfg.In)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if r.handle(ctx, scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// handle dispatches one line and reports whether the REPL should stop.
func (r *REPL) handle(ctx context.Context, line string) bool {
	err := r.cfg.Dispatcher.HandleCommand(ctx, line)
	if errors.Is(err, dispatch.ErrExit) {
		return true
	}
	if err != nil {
		klog.Shell.Error().Err(err).Msg("Command failed")
	}
	return false
}
