// Package dispatch resolves an input line to a registered command and runs
// it.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/avash/internal/command"
	shellerr "github.com/Klingon-tech/avash/internal/errors"
	"github.com/Klingon-tech/avash/internal/keystore"
	klog "github.com/Klingon-tech/avash/internal/log"
	"github.com/Klingon-tech/avash/internal/node"
)

// ErrExit is returned by HandleCommand when the operator asks to quit.
var ErrExit = errors.New("exit requested")

const (
	helpToken = "help"
	exitToken = "exit"
)

// Remote is the node surface the dispatcher needs.
type Remote interface {
	Connected() bool
	Capability(group, method string, paramNames []string) (node.Capability, bool)
}

// TxSink receives transaction IDs returned by declared commands.
type TxSink interface {
	Add(txID string)
}

// Config wires a Dispatcher.
type Config struct {
	Registry *command.Registry
	Remote   Remote
	Users    *keystore.Cache
	Prompter command.Prompter
	Gate     *command.Gate
	Tracker  TxSink
	Out      io.Writer
}

// Dispatcher turns input lines into command executions.
type Dispatcher struct {
	registry *command.Registry
	remote   Remote
	users    *keystore.Cache
	prompter command.Prompter
	gate     *command.Gate
	tracker  TxSink
	out      io.Writer
	mode     *mode
	logger   zerolog.Logger
}

// New creates a dispatcher in global mode.
func New(cfg Config) *Dispatcher {
	gate := cfg.Gate
	if gate == nil {
		gate = &command.Gate{}
	}
	users := cfg.Users
	if users == nil {
		users = keystore.NewCache()
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	return &Dispatcher{
		registry: cfg.Registry,
		remote:   cfg.Remote,
		users:    users,
		prompter: cfg.Prompter,
		gate:     gate,
		tracker:  cfg.Tracker,
		out:      out,
		mode:     newMode(),
		logger:   klog.Dispatch,
	}
}

// ActiveContext returns the context commands are resolved in, or "".
func (d *Dispatcher) ActiveContext() string {
	return d.mode.active()
}

// Busy reports whether an interactive command is collecting answers.
func (d *Dispatcher) Busy() bool {
	return d.gate.Busy()
}

var (
	errColor  = color.New(color.FgRed).SprintFunc()
	hintColor = color.New(color.FgYellow).SprintFunc()
	okColor   = color.New(color.FgGreen).SprintFunc()
)

// HandleCommand runs one input line. Command failures are reported to the
// output and never returned; the only error is ErrExit.
func (d *Dispatcher) HandleCommand(ctx context.Context, line string) error {
	if d.gate.Busy() {
		d.logger.Debug().Msg("Input ignored while prompting")
		return nil
	}

	tokens := command.SplitTokens(line)
	if len(tokens) == 0 {
		command.WriteBasicHelp(d.out, d.registry)
		return nil
	}
	active := d.ActiveContext()

	if d.handleHelp(tokens, active) {
		return nil
	}

	if len(tokens) == 1 {
		tok := tokens[0]
		if tok == exitToken {
			if active == "" {
				return ErrExit
			}
			if _, err := d.mode.exit(ctx); err != nil {
				d.logger.Error().Err(err).Msg("Leave context")
			}
			return nil
		}
		if tok != active && d.registry.HasContext(tok) {
			if err := d.mode.enter(ctx, tok); err != nil {
				d.logger.Error().Err(err).Str("context", tok).Msg("Enter context")
				return nil
			}
			d.logger.Debug().Str("context", tok).Msg("Context entered")
			return nil
		}
	}

	group, args := active, tokens
	if group == "" || d.qualified(active, tokens[0]) {
		if len(tokens) < 2 {
			fmt.Fprintf(d.out, "%s %s\n", errColor("Invalid command:"), tokens[0])
			command.WriteBasicHelp(d.out, d.registry)
			return nil
		}
		group, args = tokens[0], tokens[1:]
	}
	method, raw := args[0], args[1:]

	cmd, ok := d.registry.Lookup(group, method)
	if !ok {
		d.report(nil, shellerr.New(shellerr.CodeResolution,
			fmt.Sprintf("Unknown context or command: %s %s", group, method)))
		return nil
	}

	d.report(&cmd, d.run(ctx, cmd, raw))
	return nil
}

// qualified reports whether tok is a context prefix rather than a command
// of the active context, so "avm getBalance x" works from inside "info".
func (d *Dispatcher) qualified(active, tok string) bool {
	if !d.registry.HasContext(tok) {
		return false
	}
	_, isCmd := d.registry.Lookup(active, tok)
	return !isCmd
}

func (d *Dispatcher) handleHelp(tokens []string, active string) bool {
	switch {
	case len(tokens) == 1 && tokens[0] == helpToken:
		if active != "" {
			command.WriteContextHelp(d.out, d.registry, active)
		} else {
			command.WriteBasicHelp(d.out, d.registry)
		}
		return true
	case len(tokens) == 2 && tokens[1] == helpToken && d.registry.HasContext(tokens[0]):
		command.WriteContextHelp(d.out, d.registry, tokens[0])
		return true
	}
	return false
}

func (d *Dispatcher) run(ctx context.Context, cmd command.Command, raw []string) error {
	if cmd.Kind == command.KindInteractive {
		if cmd.RequireKeystore() && d.users.Active() == nil {
			return shellerr.Wrap(shellerr.CodePrecondition,
				"set the active user first with: keystore setUser <username> <password>", command.ErrNoActiveUser)
		}
		if d.prompter == nil {
			return shellerr.New(shellerr.CodePrecondition, "interactive commands need a terminal")
		}
		return command.PromptAndRun(ctx, cmd.Model, d.prompter, d.gate)
	}

	if !cmd.Offline && (d.remote == nil || !d.remote.Connected()) {
		return shellerr.New(shellerr.CodePrecondition,
			"not connected to node. Reconnect with: info reconnect")
	}

	var args []any
	if cmd.Spec != nil {
		var err error
		args, err = cmd.Spec.ValidateInput(raw, d.users.Active())
		if err != nil {
			return err
		}
	} else {
		args = make([]any, len(raw))
		for i, tok := range raw {
			if tok != command.UseDefault {
				args[i] = tok
			}
		}
	}

	return d.invoke(ctx, cmd, args)
}

func (d *Dispatcher) invoke(ctx context.Context, cmd command.Command, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = shellerr.New(shellerr.CodeInternal, fmt.Sprintf("%s %s: panic: %v", cmd.Context, cmd.Name, r))
		}
	}()

	d.logger.Debug().Str("context", cmd.Context).Str("command", cmd.Name).Int("args", len(args)).Msg("Invoke")
	defer klog.Benchmark(cmd.Context + " " + cmd.Name)()

	if cmd.Kind == command.KindDirect {
		return cmd.Handler(ctx, args)
	}

	if d.remote == nil {
		return shellerr.New(shellerr.CodePrecondition, "no node client configured")
	}
	call, ok := d.remote.Capability(cmd.Context, cmd.Spec.RemoteMethod(), cmd.Spec.ParamNames())
	if !ok {
		return shellerr.New(shellerr.CodeResolution,
			fmt.Sprintf("no node API serves %s %s", cmd.Context, cmd.Name))
	}

	result, err := call(ctx, args)
	if err != nil {
		return shellerr.Wrap(shellerr.CodeRemote, cmd.Context+" "+cmd.Name, err)
	}
	d.printResult(result)

	if cmd.Spec.Output == command.OutputTxID {
		d.trackResult(result)
	}
	return nil
}

func (d *Dispatcher) printResult(result json.RawMessage) {
	if len(result) == 0 {
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, result, "", "  "); err != nil {
		fmt.Fprintln(d.out, string(result))
		return
	}
	fmt.Fprintln(d.out, buf.String())
}

func (d *Dispatcher) trackResult(result json.RawMessage) {
	var out struct {
		TxID string `json:"txID"`
	}
	if err := json.Unmarshal(result, &out); err != nil || out.TxID == "" {
		d.logger.Warn().Msg("Result carries no txID to track")
		return
	}
	if d.tracker == nil {
		return
	}
	d.tracker.Add(out.TxID)
	fmt.Fprintf(d.out, "%s %s\n", okColor("Tracking transaction"), out.TxID)
}

// report renders a command failure according to its code.
func (d *Dispatcher) report(cmd *command.Command, err error) {
	if err == nil {
		return
	}

	switch shellerr.CodeOf(err) {
	case shellerr.CodeValidation:
		fmt.Fprintf(d.out, "%s %v\n", errColor("Error:"), err)
		if cmd != nil {
			fmt.Fprint(d.out, cmd.Usage("  "))
		}
	case shellerr.CodePrecondition:
		fmt.Fprintf(d.out, "%s %v\n", hintColor("Cannot run command:"), err)
	case shellerr.CodeResolution:
		fmt.Fprintf(d.out, "%s %v\n", errColor("Error:"), err)
		fmt.Fprintln(d.out, hintColor("Type help to see all supported commands"))
	case shellerr.CodeAborted:
		fmt.Fprintln(d.out, hintColor("Canceled"))
	default:
		ev := d.logger.Error().Err(err)
		if cmd != nil {
			ev = ev.Str("context", cmd.Context).Str("command", cmd.Name)
		}
		ev.Msg("Command failed")
		fmt.Fprintf(d.out, "%s %v\n", errColor("Error:"), err)
	}
}
