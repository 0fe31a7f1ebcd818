package handlers

import (
	"context"
	"strconv"

	"github.com/gosuri/uitable"

	"github.com/Klingon-tech/avash/internal/command"
	shellerr "github.com/Klingon-tech/avash/internal/errors"
	klog "github.com/Klingon-tech/avash/internal/log"
	"github.com/Klingon-tech/avash/internal/node"
)

func (s *shell) infoCommands() []command.Command {
	return []command.Command{
		command.Direct(node.ContextInfo, "nodeId", "Show the ID of the connected node", s.nodeID).WithOffline(),
		command.Direct(node.ContextInfo, "reconnect", "Reconnect to the node", s.reconnect).WithOffline(),
		command.Direct(node.ContextInfo, "status", "Show connection and shell state", s.status).WithOffline(),
	}
}

func (s *shell) nodeID(context.Context, []any) error {
	id := s.Node.NodeID()
	if id == "" {
		return shellerr.New(shellerr.CodePrecondition, "node ID unknown. Reconnect with: info reconnect")
	}
	s.printf("%s\n", id)
	return nil
}

func (s *shell) reconnect(ctx context.Context, _ []any) error {
	s.printf("Connecting to %s ...\n", s.Node.Endpoint())
	if err := s.Node.Connect(ctx); err != nil {
		klog.Node.Error().Err(err).Msg("Reconnect failed")
		return remoteErr("reconnect", err)
	}
	s.printf("%s Node ID: %s\n", okColor("Connected."), s.Node.NodeID())
	return nil
}

func (s *shell) status(context.Context, []any) error {
	connected := warnColor("no")
	if s.Node.Connected() {
		connected = okColor("yes")
	}
	activeUser := "-"
	if u := s.Users.Active(); u != nil {
		activeUser = u.Username
	}
	tracked := 0
	if s.Tracker != nil {
		tracked = len(s.Tracker.List())
	}

	table := uitable.New()
	table.AddRow(labelColor("Endpoint:"), s.Node.Endpoint())
	table.AddRow(labelColor("Connected:"), connected)
	table.AddRow(labelColor("Node ID:"), s.Node.NodeID())
	table.AddRow(labelColor("Active user:"), activeUser)
	table.AddRow(labelColor("Cached users:"), strconv.Itoa(len(s.Users.Usernames())))
	table.AddRow(labelColor("Tracked txs:"), strconv.Itoa(tracked))
	s.printf("%s\n", table)
	return nil
}
