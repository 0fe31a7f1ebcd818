// Package handlers holds the shell's built-in commands.
//
// Each context contributes a list of commands; Commands collects them all
// for registration.
package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/Klingon-tech/avash/internal/command"
	shellerr "github.com/Klingon-tech/avash/internal/errors"
	"github.com/Klingon-tech/avash/internal/history"
	"github.com/Klingon-tech/avash/internal/keystore"
	"github.com/Klingon-tech/avash/internal/node"
	"github.com/Klingon-tech/avash/internal/txtracker"
)

// Node is the node client surface used by the built-in commands.
type Node interface {
	Endpoint() string
	Connected() bool
	NodeID() string
	Connect(ctx context.Context) error
	TxStatus(ctx context.Context, txID string) (string, error)
	ListUsers(ctx context.Context) ([]string, error)
	CreateUser(ctx context.Context, cred node.Credentials) error
	ListAddresses(ctx context.Context, cred node.Credentials) ([]string, error)
	CreateAddress(ctx context.Context, cred node.Credentials) (string, error)
	Send(ctx context.Context, cred node.Credentials, args node.SendArgs) (string, error)
	AddValidator(ctx context.Context, cred node.Credentials, args node.AddValidatorArgs) (string, error)
}

// Tracker follows submitted transactions.
type Tracker interface {
	Add(txID string)
	List() []txtracker.PendingTx
}

// Deps are the collaborators the built-in commands use.
type Deps struct {
	Node    Node
	Users   *keystore.Cache
	Vault   *keystore.Vault
	Tracker Tracker
	History *history.History
	Out     io.Writer
}

type shell struct {
	Deps
}

var (
	labelColor = color.New(color.FgCyan).SprintFunc()
	okColor    = color.New(color.FgGreen).SprintFunc()
	warnColor  = color.New(color.FgYellow).SprintFunc()
)

// Commands returns every built-in command.
func Commands(d Deps) []command.Command {
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.Users == nil {
		d.Users = keystore.NewCache()
	}
	s := &shell{Deps: d}

	var out []command.Command
	out = append(out, s.infoCommands()...)
	out = append(out, s.keystoreCommands()...)
	out = append(out, s.avmCommands()...)
	out = append(out, s.platformCommands()...)
	out = append(out, s.txCommands()...)
	out = append(out, s.shellCommands()...)
	out = append(out, customCommands(d.Out)...)
	return out
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// credentials returns the injected username/password pair at args[0:2].
func credentials(args []any) node.Credentials {
	return node.Credentials{Username: stringArg(args, 0), Password: stringArg(args, 1)}
}

func (s *shell) activeCredentials() (node.Credentials, error) {
	u := s.Users.Active()
	if u == nil {
		return node.Credentials{}, shellerr.Wrap(shellerr.CodePrecondition,
			"set the active user first with: keystore setUser <username> <password>", command.ErrNoActiveUser)
	}
	return node.Credentials{Username: u.Username, Password: u.Password}, nil
}

func stringArg(args []any, i int) string {
	if i >= len(args) || args[i] == nil {
		return ""
	}
	if s, ok := args[i].(string); ok {
		return s
	}
	return fmt.Sprint(args[i])
}

func remoteErr(what string, err error) error {
	return shellerr.Wrap(shellerr.CodeRemote, what, err)
}

func (s *shell) track(txID string) {
	if txID == "" || s.Tracker == nil {
		return
	}
	s.Tracker.Add(txID)
	s.printf("%s %s\n", okColor("Tracking transaction"), txID)
}
