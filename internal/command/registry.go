package command

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	klog "github.com/Klingon-tech/avash/internal/log"
)

// ErrDuplicateCommand is returned when a (context, name) pair is registered twice.
var ErrDuplicateCommand = errors.New("duplicate command")

// Registry maps (context, name) to a Command. It is filled once during
// startup and read by the dispatcher and the REPL afterwards.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]map[string]Command),
	}
}

// Register adds commands in order. It stops at the first invalid or
// colliding command; commands before it stay registered.
func (r *Registry) Register(cmds ...Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range cmds {
		if err := c.validate(); err != nil {
			return err
		}

		byName, ok := r.commands[c.Context]
		if !ok {
			byName = make(map[string]Command)
			r.commands[c.Context] = byName
		}
		if prev, exists := byName[c.Name]; exists {
			return fmt.Errorf("%w: %s %s (%s, already registered as %s)",
				ErrDuplicateCommand, c.Context, c.Name, c.Kind, prev.Kind)
		}
		byName[c.Name] = c

		klog.Registry.Debug().
			Str("context", c.Context).
			Str("name", c.Name).
			Stringer("kind", c.Kind).
			Msg("Command registered")
	}
	return nil
}

// RegisterSpecs registers each spec as a declared command.
func (r *Registry) RegisterSpecs(specs []*Spec) error {
	cmds := make([]Command, len(specs))
	for i, s := range specs {
		cmds[i] = Declared(s)
	}
	return r.Register(cmds...)
}

// Lookup returns the command registered for (context, name).
func (r *Registry) Lookup(context, name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[context][name]
	return c, ok
}

// HasContext reports whether any command is registered under context.
func (r *Registry) HasContext(context string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands[context]) > 0
}

// Contexts lists every context in sorted order.
func (r *Registry) Contexts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.commands))
	for ctx, byName := range r.commands {
		if len(byName) > 0 {
			out = append(out, ctx)
		}
	}
	sort.Strings(out)
	return out
}

// Commands lists the commands of context sorted by name.
func (r *Registry) Commands(context string) []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := r.commands[context]
	out := make([]Command, 0, len(byName))
	for _, c := range byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CommandNames lists the command names of context in sorted order.
func (r *Registry) CommandNames(context string) []string {
	cmds := r.Commands(context)
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name
	}
	return out
}

// Len returns the total number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, byName := range r.commands {
		n += len(byName)
	}
	return n
}
