// Package prompt asks the operator for the fields of interactive commands.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/Klingon-tech/avash/internal/command"
)

// Huh prompts with a charmbracelet/huh form, one input per question.
type Huh struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

// Option configures a Huh prompter.
type Option func(*Huh)

// WithIO sets the terminal streams. Defaults are stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(h *Huh) {
		h.in = in
		h.out = out
	}
}

// WithAccessible switches to plain line prompts, for screen readers and
// input that is not a terminal.
func WithAccessible(on bool) Option {
	return func(h *Huh) { h.accessible = on }
}

// NewHuh creates a prompter.
func NewHuh(opts ...Option) *Huh {
	h := &Huh{}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Prompt asks every question in one form. Defaults are prefilled so
// pressing enter keeps them. Esc or ctrl+c aborts with command.ErrAborted.
func (h *Huh) Prompt(ctx context.Context, questions []command.Question) (command.Answers, error) {
	if len(questions) == 0 {
		return command.Answers{}, nil
	}
	// Accessible forms do not watch ctx.
	if ctx.Err() != nil {
		return nil, command.ErrAborted
	}

	values := make([]string, len(questions))
	fields := make([]huh.Field, len(questions))
	for i, q := range questions {
		values[i] = q.Default
		in := huh.NewInput().
			Title(q.Text).
			Value(&values[i])
		if q.Default != "" && !q.Secret {
			in = in.Placeholder(q.Default)
		}
		if q.Secret && h.canHideInput() {
			in = in.EchoMode(huh.EchoModePassword)
		}
		fields[i] = in
	}

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithAccessible(h.accessible).
		WithShowHelp(true)
	if h.in != nil {
		form = form.WithInput(h.in)
	}
	if h.out != nil {
		form = form.WithOutput(h.out)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			return nil, command.ErrAborted
		}
		return nil, fmt.Errorf("prompt form: %w", err)
	}
	if ctx.Err() != nil || h.inputEnded() {
		return nil, command.ErrAborted
	}

	answers := make(command.Answers, len(questions))
	for i, q := range questions {
		answers[q.Key] = values[i]
	}
	return answers, nil
}

// canHideInput reports whether secret answers can be read without echo.
// Accessible huh reads passwords from a file descriptor only; piped input
// is read as plain lines.
func (h *Huh) canHideInput() bool {
	if !h.accessible || h.in == nil {
		return true
	}
	_, ok := h.in.(interface{ Fd() uintptr })
	return ok
}

// inputEnded reports whether piped answers ran out mid-form.
func (h *Huh) inputEnded() bool {
	lr, ok := h.in.(*LineReader)
	return ok && lr.Exhausted()
}
