package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/Klingon-tech/avash/internal/command"
)

// customCommands is the place for site-specific commands. The sample shows
// the minimum a command needs.
func customCommands(out io.Writer) []command.Command {
	return []command.Command{
		command.Direct("custom", "sample", "Run sample extension", func(context.Context, []any) error {
			fmt.Fprintln(out, "This is a sample custom command")
			return nil
		}).WithOffline(),
	}
}
