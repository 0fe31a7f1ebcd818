package handlers

import (
	"context"
	"strconv"

	"github.com/Klingon-tech/avash/internal/command"
	shellerr "github.com/Klingon-tech/avash/internal/errors"
)

const contextShell = "shell"

func (s *shell) shellCommands() []command.Command {
	if s.History == nil {
		return nil
	}
	return []command.Command{
		command.Direct(contextShell, "history", "Show recent input lines: history [count]", s.showHistory).WithOffline(),
	}
}

func (s *shell) showHistory(_ context.Context, args []any) error {
	n := 20
	if raw := stringArg(args, 0); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return shellerr.New(shellerr.CodeValidation, "count must be a positive integer")
		}
		n = v
	}
	for i, line := range s.History.Recent(n) {
		s.printf("%4d  %s\n", i+1, line)
	}
	return nil
}
