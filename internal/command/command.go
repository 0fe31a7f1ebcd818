package command

import (
	"context"
	"fmt"
	"strings"
)

// Kind tags which declaration style a Command was registered with.
type Kind int

const (
	// KindDirect runs a Go handler, optionally validated by a code-attached Spec.
	KindDirect Kind = iota
	// KindDeclared runs a remote capability described by a Spec.
	KindDeclared
	// KindInteractive prompts for each field of a Model before running it.
	KindInteractive
)

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindDeclared:
		return "declared"
	case KindInteractive:
		return "interactive"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Handler executes a direct command with its sanitized arguments.
type Handler func(ctx context.Context, args []any) error

// Command is one registry entry, keyed by (Context, Name).
type Command struct {
	Kind        Kind
	Context     string
	Name        string
	Description string

	Handler Handler
	Spec    *Spec
	Model   Model

	// Offline commands run without a node connection.
	Offline bool
}

// Direct builds a handler-backed command that takes raw string arguments.
func Direct(context, name, description string, h Handler) Command {
	return Command{
		Kind:        KindDirect,
		Context:     context,
		Name:        name,
		Description: description,
		Handler:     h,
	}
}

// DirectWithSpec builds a handler-backed command whose arguments are
// validated and sanitized by spec first.
func DirectWithSpec(spec *Spec, h Handler) Command {
	return Command{
		Kind:        KindDirect,
		Context:     spec.Context,
		Name:        spec.Name,
		Description: spec.Description,
		Handler:     h,
		Spec:        spec,
	}
}

// Declared builds a command served by the remote capability spec binds to.
func Declared(spec *Spec) Command {
	return Command{
		Kind:        KindDeclared,
		Context:     spec.Context,
		Name:        spec.Name,
		Description: spec.Description,
		Spec:        spec,
	}
}

// Interactive builds a prompt-driven command.
func Interactive(m Model) Command {
	return Command{
		Kind:        KindInteractive,
		Context:     m.Context(),
		Name:        m.Name(),
		Description: m.Help(),
		Model:       m,
	}
}

// WithOffline marks the command as runnable while disconnected.
func (c Command) WithOffline() Command {
	c.Offline = true
	return c
}

// ID is unique across the registry.
func (c Command) ID() string {
	return c.Context + "_" + c.Name
}

// RequireKeystore reports whether an active credential must be set.
func (c Command) RequireKeystore() bool {
	switch {
	case c.Model != nil:
		return c.Model.RequireKeystore()
	case c.Spec != nil:
		return c.Spec.UseKeystore()
	}
	return false
}

// Usage renders the help block for the command.
func (c Command) Usage(prefix string) string {
	if c.Spec != nil {
		return c.Spec.Usage(prefix)
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(c.Name)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s- %s\n", prefix, c.Description)
	if c.Model != nil {
		for _, f := range c.Model.Fields() {
			fmt.Fprintf(&b, "%s%s%s: %s\n", prefix, prefix, f.Name, f.Prompt)
		}
	}
	return b.String()
}

func (c Command) validate() error {
	if c.Context == "" || c.Name == "" {
		return fmt.Errorf("command %q in context %q: empty context or name", c.Name, c.Context)
	}
	switch c.Kind {
	case KindDirect:
		if c.Handler == nil {
			return fmt.Errorf("command %s: direct command without handler", c.ID())
		}
	case KindDeclared:
		if c.Spec == nil {
			return fmt.Errorf("command %s: declared command without spec", c.ID())
		}
	case KindInteractive:
		if c.Model == nil {
			return fmt.Errorf("command %s: interactive command without model", c.ID())
		}
	default:
		return fmt.Errorf("command %s: unknown kind %v", c.ID(), c.Kind)
	}
	return nil
}
