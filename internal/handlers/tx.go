package handlers

import (
	"context"
	"time"

	"github.com/gosuri/uitable"

	"github.com/Klingon-tech/avash/internal/command"
	"github.com/Klingon-tech/avash/internal/txtracker"
)

const contextTx = "tx"

func (s *shell) txCommands() []command.Command {
	if s.Tracker == nil {
		return nil
	}
	return []command.Command{
		command.Direct(contextTx, "list", "List tracked transactions, newest first", s.listTxs).WithOffline(),
		command.DirectWithSpec(command.NewSpec(contextTx, "track", "Track a transaction until it is accepted",
			command.Param("txID", command.TypeString, "transaction ID"),
		), s.trackTx).WithOffline(),
	}
}

func (s *shell) listTxs(context.Context, []any) error {
	txs := s.Tracker.List()
	if len(txs) == 0 {
		s.printf("No tracked transactions\n")
		return nil
	}

	now := time.Now()
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("TX", "STATE", "SUBMITTED", "EXPIRES")
	for _, tx := range txs {
		state := tx.State
		if state == "" {
			state = "Pending"
		}
		switch {
		case state == txtracker.Accepted:
			state = okColor(state)
		case tx.Expired(now):
			state = warnColor(state + " (expired)")
		}
		table.AddRow(tx.ID, state, tx.SubmittedAt.Format(time.TimeOnly), tx.ExpireAt.Format(time.TimeOnly))
	}
	s.printf("%s\n", table)
	return nil
}

func (s *shell) trackTx(_ context.Context, args []any) error {
	s.track(stringArg(args, 0))
	return nil
}
