package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	helpTitle   = color.New(color.Bold).SprintFunc()
	helpContext = color.New(color.FgCyan, color.Bold).SprintFunc()
	helpDim     = color.New(color.Faint).SprintFunc()
)

// WriteBasicHelp lists every context and its commands.
func WriteBasicHelp(w io.Writer, r *Registry) {
	fmt.Fprintln(w, helpTitle("SUPPORTED COMMANDS:"))
	for _, ctx := range r.Contexts() {
		fmt.Fprintln(w, helpContext(ctx))
		for _, name := range r.CommandNames(ctx) {
			fmt.Fprintf(w, "\t%s\n", name)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, helpDim("Type <context> help for parameters, <context> to enter a context, exit to leave it."))
}

// WriteContextHelp renders usage for every command of context.
func WriteContextHelp(w io.Writer, r *Registry, context string) {
	cmds := r.Commands(context)
	if len(cmds) == 0 {
		fmt.Fprintf(w, "Unknown context: %s\n", context)
		return
	}
	fmt.Fprintln(w, helpContext(context))
	for _, c := range cmds {
		fmt.Fprint(w, c.Usage("\t"))
	}
}

// WriteBashCompletion writes a sourceable script describing every context
// and its commands for bash tab completion.
func WriteBashCompletion(w io.Writer, r *Registry) error {
	contexts := r.Contexts()

	lines := []string{
		fmt.Sprintf("ALL_CONTEXT=%q", strings.Join(contexts, " ")),
		"",
		"declare -A COMMAND_MAP",
	}
	for _, ctx := range contexts {
		lines = append(lines, fmt.Sprintf("COMMAND_MAP[%s]=%q", ctx, strings.Join(r.CommandNames(ctx), " ")))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
