package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/Klingon-tech/avash/config"
	"github.com/Klingon-tech/avash/internal/command"
	"github.com/Klingon-tech/avash/internal/dispatch"
	"github.com/Klingon-tech/avash/internal/handlers"
	"github.com/Klingon-tech/avash/internal/history"
	"github.com/Klingon-tech/avash/internal/keystore"
	klog "github.com/Klingon-tech/avash/internal/log"
	"github.com/Klingon-tech/avash/internal/node"
	"github.com/Klingon-tech/avash/internal/poller"
	"github.com/Klingon-tech/avash/internal/prompt"
	"github.com/Klingon-tech/avash/internal/repl"
	"github.com/Klingon-tech/avash/internal/rpcclient"
	"github.com/Klingon-tech/avash/internal/storage"
	"github.com/Klingon-tech/avash/internal/txtracker"
	"github.com/Klingon-tech/avash/specs"
)

// Environment variables that seed the active keystore user.
const (
	envUsername = "AVA_KEYSTORE_USERNAME"
	envPassword = "AVA_KEYSTORE_PASSWORD"
)

var (
	okColor   = color.New(color.FgGreen).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
)

// app is one wired shell instance.
type app struct {
	cfg        *config.Config
	out        io.Writer
	node       *node.Client
	users      *keystore.Cache
	tracker    *txtracker.Tracker
	poller     *poller.Service
	registry   *command.Registry
	dispatcher *dispatch.Dispatcher
	repl       *repl.REPL
}

// newApp wires every component over db. Nothing touches the network yet.
func newApp(cfg *config.Config, db storage.DB, in io.Reader, out io.Writer, getenv func(string) string) (*app, error) {
	a := &app{cfg: cfg, out: out, users: keystore.NewCache()}
	seedUser(a.users, getenv)

	rpc := rpcclient.NewWithTimeout(cfg.RPC.URL, cfg.RPC.Timeout)
	a.node = node.New(rpc, cfg.RPC.Retries)

	a.tracker = txtracker.New(a.node, txtracker.Options{
		Capacity: cfg.Tracker.Capacity,
		Expiry:   cfg.Tracker.Expiry,
	})
	a.poller = poller.New("tracker", cfg.Tracker.Interval, a.tracker)

	var hist *history.History
	if !cfg.History.Disabled {
		h, err := history.Open(storage.NewPrefixDB(db, "history/"), cfg.History.Size)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		hist = h
	}

	a.registry = command.NewRegistry()
	err := a.registry.Register(handlers.Commands(handlers.Deps{
		Node:    a.node,
		Users:   a.users,
		Vault:   keystore.NewVault(storage.NewPrefixDB(db, "vault/"), keystore.DefaultParams()),
		Tracker: a.tracker,
		History: hist,
		Out:     out,
	})...)
	if err != nil {
		return nil, fmt.Errorf("register built-in commands: %w", err)
	}

	declared, err := specs.Load(cfg.Specs.Dir)
	if err != nil {
		return nil, fmt.Errorf("load command descriptors: %w", err)
	}
	for _, sp := range declared {
		if !node.HasEndpoint(sp.Context) {
			return nil, fmt.Errorf("descriptor %s: no node API for context %s", sp.Name, sp.Context)
		}
	}
	if err := a.registry.RegisterSpecs(declared); err != nil {
		return nil, fmt.Errorf("register command descriptors: %w", err)
	}
	klog.Shell.Debug().Int("commands", a.registry.Len()).Msg("Commands registered")

	// Piped input is shared line by line between the shell and its prompts,
	// which then fall back to plain accessible questions.
	promptOpts := []prompt.Option{prompt.WithIO(in, out)}
	if !repl.IsTerminal(in) {
		in = prompt.NewLineReader(in)
		promptOpts = []prompt.Option{prompt.WithIO(in, out), prompt.WithAccessible(true)}
	}

	a.dispatcher = dispatch.New(dispatch.Config{
		Registry: a.registry,
		Remote:   a.node,
		Users:    a.users,
		Prompter: prompt.NewHuh(promptOpts...),
		Tracker:  a.tracker,
		Out:      out,
	})

	rc := repl.Config{
		Dispatcher: a.dispatcher,
		Registry:   a.registry,
		In:         in,
		Out:        out,
	}
	if hist != nil {
		rc.History = hist
	}
	a.repl = repl.New(rc)

	a.tracker.SetCallback(func(txID string) {
		a.repl.Notify(fmt.Sprintf("%s %s", okColor("Transaction accepted:"), txID))
	})
	return a, nil
}

// seedUser makes the environment credential the active user.
func seedUser(users *keystore.Cache, getenv func(string) string) {
	name, pass := getenv(envUsername), getenv(envPassword)
	switch {
	case name == "":
	case pass == "":
		klog.Keystore.Warn().Str("user", name).Msg(envUsername + " set without " + envPassword + "; ignoring")
	default:
		users.Add(keystore.User{Username: name, Password: pass}, true)
		klog.Keystore.Info().Str("user", name).Msg("Active user from environment")
	}
}

// connect tries the node once at startup. Failure leaves the shell usable
// for offline commands.
func (a *app) connect(ctx context.Context) {
	if err := a.node.Connect(ctx); err != nil {
		klog.Node.Warn().Err(err).Str("endpoint", a.node.Endpoint()).Msg("Node unreachable")
		fmt.Fprintf(a.out, "%s could not reach %s. Reconnect with: info reconnect\n",
			warnColor("Warning:"), a.node.Endpoint())
		return
	}
	fmt.Fprintf(a.out, "Connected to %s (%s)\n", a.node.Endpoint(), a.node.NodeID())
}

// runOnce executes a single command line.
func (a *app) runOnce(ctx context.Context, args []string) error {
	err := a.dispatcher.HandleCommand(ctx, joinArgs(args))
	if errors.Is(err, dispatch.ErrExit) {
		return nil
	}
	return err
}

// runInteractive runs the REPL and the tracker poller until the operator
// exits or ctx is canceled.
func (a *app) runInteractive(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return a.repl.Run(gctx)
	})
	g.Go(func() error {
		err := a.poller.Run(gctx, a.poller.Interval())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// joinArgs rebuilds a command line from shell arguments, quoting any
// argument that the tokenizer would otherwise split.
func joinArgs(args []string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t") {
			parts[i] = `"` + arg + `"`
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}
