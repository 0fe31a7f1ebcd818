// avash is an interactive shell for an Avalanche node.
//
// Usage:
//
//	avash                          Start the REPL
//	avash <context> <cmd> [args]   Run one command and exit
//	avash completion-data          Print bash completion data
//	avash init-config              Write a default config file
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/Klingon-tech/avash/config"
	"github.com/Klingon-tech/avash/internal/command"
	klog "github.com/Klingon-tech/avash/internal/log"
	"github.com/Klingon-tech/avash/internal/storage"
)

var flags *config.Flags

var rootCmd = &cobra.Command{
	Use:   "avash [context command [args...]]",
	Short: "Interactive shell for an Avalanche node",
	Long: `avash talks to an Avalanche node over its JSON-RPC API.

Without arguments it starts an interactive shell. Commands are grouped in
contexts (info, keystore, avm, platform, ...): type a context name to enter
it, "exit" to leave it, and "help" for the list of commands.

With arguments it runs that one command and exits:
  avash avm getBalance X-avax1... AVAX`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

var completionCmd = &cobra.Command{
	Use:   "completion-data",
	Short: "Print the context and command lists for bash completion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(_ context.Context, a *app) error {
			return command.WriteBashCompletion(os.Stdout, a.registry)
		})
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default config file if none exists",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cfg, err := config.Load(flags)
		if err != nil {
			return err
		}
		path := config.ExpandHome(cfg.ConfigFile())
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.EnsureDataDir(cfg); err != nil {
			return err
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Println("Wrote", path)
		return nil
	},
}

func init() {
	flags = config.BindFlags(rootCmd.PersistentFlags())
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
		a.connect(ctx)
		if len(args) > 0 {
			return a.runOnce(ctx, args)
		}
		return a.runInteractive(ctx)
	})
}

// withApp loads config, opens the local store and runs fn on a wired shell.
func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := config.EnsureDataDir(cfg); err != nil {
		return err
	}

	db, err := storage.NewBadger(cfg.DBDir())
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer db.Close()

	a, err := newApp(cfg, db, os.Stdin, os.Stdout, os.Getenv)
	if err != nil {
		return err
	}
	return fn(ctx, a)
}
