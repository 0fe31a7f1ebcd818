package handlers

import (
	"context"
	"math/big"

	"github.com/Klingon-tech/avash/internal/command"
	shellerr "github.com/Klingon-tech/avash/internal/errors"
	"github.com/Klingon-tech/avash/internal/node"
)

func (s *shell) avmCommands() []command.Command {
	group := node.ContextAVM
	return []command.Command{
		command.DirectWithSpec(command.NewSpec(group, "listAddresses", "List the addresses of the active user",
			command.Param(command.ParamUsername, command.TypeString, ""),
			command.Param(command.ParamPassword, command.TypeString, ""),
		), s.listAddresses),
		command.DirectWithSpec(command.NewSpec(group, "createAddress", "Create an address for the active user",
			command.Param(command.ParamUsername, command.TypeString, ""),
			command.Param(command.ParamPassword, command.TypeString, ""),
		), s.createAddress),
		command.DirectWithSpec(command.NewSpec(group, "send", "Send an asset from the active user",
			command.Param(command.ParamUsername, command.TypeString, ""),
			command.Param(command.ParamPassword, command.TypeString, ""),
			command.Param("from", command.TypeStringArray, "source addresses, quoted and space separated"),
			command.Param("to", command.TypeString, "destination address"),
			command.Param("amount", command.TypeBigInt, "amount in the asset's smallest unit"),
			command.OptionalParam("assetID", command.TypeString, "asset ID or alias (default AVAX)"),
		), s.send),
		command.DirectWithSpec(command.NewSpec(group, "checkTx", "Show the status of a transaction",
			command.Param("txID", command.TypeString, "transaction ID"),
		), s.checkTx),
	}
}

func (s *shell) listAddresses(ctx context.Context, args []any) error {
	cred := credentials(args)
	addrs, err := s.Node.ListAddresses(ctx, cred)
	if err != nil {
		return remoteErr("list addresses", err)
	}
	s.printf("Addresses for keystore: %s\n", cred.Username)
	if len(addrs) == 0 {
		s.printf("None found\n")
		return nil
	}
	for _, a := range addrs {
		s.printf("%s\n", a)
	}
	return nil
}

func (s *shell) createAddress(ctx context.Context, args []any) error {
	addr, err := s.Node.CreateAddress(ctx, credentials(args))
	if err != nil {
		return remoteErr("create address", err)
	}
	s.printf("Created address: %s\n", addr)
	return nil
}

func (s *shell) send(ctx context.Context, args []any) error {
	from, _ := args[2].([]string)
	amount, ok := args[4].(*big.Int)
	if !ok {
		return shellerr.New(shellerr.CodeValidation, "amount is required")
	}

	txID, err := s.Node.Send(ctx, credentials(args), node.SendArgs{
		From:    from,
		To:      stringArg(args, 3),
		Amount:  amount,
		AssetID: stringArg(args, 5),
	})
	if err != nil {
		return remoteErr("send", err)
	}
	s.printf("Submitted transaction %s\n", txID)
	s.track(txID)
	return nil
}

func (s *shell) checkTx(ctx context.Context, args []any) error {
	status, err := s.Node.TxStatus(ctx, stringArg(args, 0))
	if err != nil {
		return remoteErr("check tx", err)
	}
	s.printf("Transaction state: %s\n", status)
	return nil
}
