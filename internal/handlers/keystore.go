package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Klingon-tech/avash/internal/command"
	shellerr "github.com/Klingon-tech/avash/internal/errors"
	"github.com/Klingon-tech/avash/internal/keystore"
	klog "github.com/Klingon-tech/avash/internal/log"
	"github.com/Klingon-tech/avash/internal/node"
)

// Param names for commands that manage credentials. They are not the
// injected username/password pair.
const (
	paramUser = "user"
	paramPass = "pass"
)

func (s *shell) keystoreCommands() []command.Command {
	group := node.ContextKeystore
	cmds := []command.Command{
		command.Direct(group, "listUsers", "List the keystore users on the node", s.listUsers),
		command.DirectWithSpec(command.NewSpec(group, "createUser", "Create a keystore user on the node and cache it",
			command.Param(paramUser, command.TypeString, "new username"),
			command.Param(paramPass, command.TypeString, "new password"),
		), s.createUser),
		command.DirectWithSpec(command.NewSpec(group, "setUser", "Set the active keystore user",
			command.Param(paramUser, command.TypeString, "username"),
			command.OptionalParam(paramPass, command.TypeString, "password, kept from the cache if omitted"),
		), s.setUser).WithOffline(),
		command.DirectWithSpec(command.NewSpec(group, "removeUser", "Forget a cached keystore user",
			command.Param(paramUser, command.TypeString, "username"),
		), s.removeUser).WithOffline(),
		command.Direct(group, "activeUser", "Show the active keystore user", s.activeUser).WithOffline(),
	}

	if s.Vault != nil {
		cmds = append(cmds,
			command.Interactive(&vaultModel{shell: s, name: "saveUsers", save: true}).WithOffline(),
			command.Interactive(&vaultModel{shell: s, name: "loadUsers"}).WithOffline(),
		)
	}
	return cmds
}

func (s *shell) listUsers(ctx context.Context, _ []any) error {
	users, err := s.Node.ListUsers(ctx)
	if err != nil {
		return remoteErr("list users", err)
	}
	if len(users) == 0 {
		s.printf("No users found\n")
		return nil
	}
	s.printf("%d users found:\n", len(users))
	for _, name := range users {
		marker := " "
		if s.Users.Has(name) {
			marker = "*"
		}
		s.printf("%s %s\n", marker, name)
	}
	return nil
}

func (s *shell) createUser(ctx context.Context, args []any) error {
	user := keystore.User{Username: stringArg(args, 0), Password: stringArg(args, 1)}
	if err := s.Node.CreateUser(ctx, node.Credentials{Username: user.Username, Password: user.Password}); err != nil {
		return remoteErr("create user", err)
	}
	s.Users.Add(user, false)
	klog.Keystore.Info().Str("user", user.Username).Msg("User created")
	s.printf("Created user: %s\n", user.Username)
	return nil
}

func (s *shell) setUser(_ context.Context, args []any) error {
	name, pass := stringArg(args, 0), stringArg(args, 1)
	if pass == "" {
		if !s.Users.SetActive(name) {
			return shellerr.New(shellerr.CodeValidation,
				fmt.Sprintf("user %s is not cached; give its password", name))
		}
	} else {
		s.Users.Add(keystore.User{Username: name, Password: pass}, true)
	}
	s.printf("Active user: %s\n", name)
	return nil
}

func (s *shell) removeUser(_ context.Context, args []any) error {
	name := stringArg(args, 0)
	if !s.Users.Has(name) {
		return shellerr.New(shellerr.CodeValidation, fmt.Sprintf("user %s is not cached", name))
	}
	s.Users.Remove(name)
	s.printf("Removed user: %s\n", name)
	return nil
}

func (s *shell) activeUser(context.Context, []any) error {
	u := s.Users.Active()
	if u == nil {
		s.printf("No active user\n")
		return nil
	}
	s.printf("%s\n", u.Username)
	return nil
}

const fieldPassphrase = "passphrase"

// vaultModel seals the credential cache into the local store, or restores
// it, behind a passphrase.
type vaultModel struct {
	shell *shell
	name  string
	save  bool
}

func (m *vaultModel) Context() string       { return node.ContextKeystore }
func (m *vaultModel) Name() string          { return m.name }
func (m *vaultModel) RequireKeystore() bool { return false }

func (m *vaultModel) Help() string {
	if m.save {
		return "Encrypt the cached users to disk"
	}
	return "Restore cached users from disk"
}

func (m *vaultModel) Fields() []command.Field {
	return []command.Field{{Name: fieldPassphrase, Prompt: "Passphrase", Secret: true}}
}

func (m *vaultModel) Run(_ context.Context, a command.Answers) error {
	pass := []byte(a.String(fieldPassphrase))
	if len(pass) == 0 {
		return shellerr.New(shellerr.CodeValidation, "passphrase must not be empty")
	}

	s := m.shell
	if m.save {
		n, err := s.Vault.Save(s.Users, pass)
		if err != nil {
			return shellerr.Wrap(shellerr.CodeInternal, "save users", err)
		}
		s.printf("Saved %d users\n", n)
		return nil
	}

	n, err := s.Vault.Load(s.Users, pass)
	if errors.Is(err, keystore.ErrNoVault) {
		return shellerr.Wrap(shellerr.CodePrecondition, "nothing saved yet; run keystore saveUsers first", err)
	}
	if err != nil {
		return shellerr.Wrap(shellerr.CodeValidation, "load users", err)
	}
	s.printf("Loaded %d users\n", n)
	return nil
}
