package command

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	shellerr "github.com/Klingon-tech/avash/internal/errors"
)

// ErrAborted is returned by a Prompter when the operator cancels.
var ErrAborted = errors.New("prompt aborted")

// Field is one value an interactive command asks for.
type Field struct {
	Name    string
	Prompt  string
	Default string
	Secret  bool
}

// Model is a command whose arguments are collected by prompting for each
// field in turn.
type Model interface {
	Context() string
	Name() string
	Help() string
	// Fields is read at the start of every run so defaults can reflect
	// current state.
	Fields() []Field
	RequireKeystore() bool
	Run(ctx context.Context, answers Answers) error
}

// Question is what a Prompter shows for one field.
type Question struct {
	Text    string
	Key     string
	Default string
	Secret  bool
}

// Prompter asks the operator a sequence of questions.
type Prompter interface {
	Prompt(ctx context.Context, questions []Question) (Answers, error)
}

// Answers holds prompt results keyed by field name.
type Answers map[string]string

func (a Answers) String(key string) string {
	return strings.TrimSpace(a[key])
}

func (a Answers) BigInt(key string) (*big.Int, error) {
	raw := a.String(key)
	if raw == "" {
		return nil, fmt.Errorf("%s: missing value", key)
	}
	n, err := ParseBigInt(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// Date reads the answer as unix seconds, falling back to a relative date.
func (a Answers) Date(key string) (time.Time, error) {
	raw := a.String(key)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s: missing value", key)
	}
	t, err := ParseDate(raw, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}

func questions(fields []Field) []Question {
	out := make([]Question, len(fields))
	for i, f := range fields {
		text := f.Prompt
		if text == "" {
			text = f.Name
		}
		out[i] = Question{Text: text, Key: f.Name, Default: f.Default, Secret: f.Secret}
	}
	return out
}

// PromptAndRun collects an answer for every field of m and then runs it.
// The gate is held until the command finishes. An aborted prompt skips Run.
// Panics in the prompter or in Run are returned as internal errors.
func PromptAndRun(ctx context.Context, m Model, p Prompter, gate *Gate) (err error) {
	release, ok := gate.Acquire()
	if !ok {
		return shellerr.New(shellerr.CodePrecondition, "another interactive command is in progress")
	}
	defer release()

	defer func() {
		if r := recover(); r != nil {
			err = shellerr.New(shellerr.CodeInternal, fmt.Sprintf("%s %s: panic: %v", m.Context(), m.Name(), r))
		}
	}()

	fields := m.Fields()
	answers, err := p.Prompt(ctx, questions(fields))
	if err != nil {
		if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
			return shellerr.Wrap(shellerr.CodeAborted, "canceled", ErrAborted)
		}
		return shellerr.Wrap(shellerr.CodeInternal, "prompt", err)
	}

	filled := make(Answers, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(answers[f.Name])
		if v == "" {
			v = f.Default
		}
		filled[f.Name] = v
	}

	return m.Run(ctx, filled)
}
