package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds the command-line overrides.
type Flags struct {
	Config    string
	DataDir   string
	RPC       string
	Specs     string
	LogLevel  string
	LogFile   string
	LogJSON   bool
	NoHistory bool

	fs *pflag.FlagSet
}

// BindFlags registers the config flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	fs.StringVarP(&f.Config, "config", "c", "", "Config file path (default: <datadir>/avash.conf)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory (default: ~/.avash)")
	fs.StringVar(&f.RPC, "rpc", "", "Node RPC URL (default: http://127.0.0.1:9650)")
	fs.StringVar(&f.Specs, "specs", "", "Command descriptor directory (default: built-in)")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")
	fs.BoolVar(&f.NoHistory, "no-history", false, "Do not read or write input history")

	return f
}

func (f *Flags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Config != "" {
		cfg.ConfigPath = f.Config
	}
	if f.RPC != "" {
		cfg.RPC.URL = f.RPC
	}
	if f.Specs != "" {
		cfg.Specs.Dir = f.Specs
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.changed("log-json") {
		cfg.Log.JSON = f.LogJSON
	}
	if f.changed("no-history") {
		cfg.History.Disabled = f.NoHistory
	}
}

// Load builds the configuration with the following precedence:
// 1. Default values
// 2. Config file
// 3. Command-line flags
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	// The file location depends on datadir and --config.
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Config != "" {
		cfg.ConfigPath = f.Config
	}
	cfg.DataDir = ExpandHome(cfg.DataDir)

	values, err := LoadFile(ExpandHome(cfg.ConfigFile()))
	if err != nil {
		return nil, fmt.Errorf("load config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, values); err != nil {
		return nil, err
	}

	ApplyFlags(cfg, f)
	cfg.DataDir = ExpandHome(cfg.DataDir)
	cfg.Specs.Dir = ExpandHome(cfg.Specs.Dir)
	cfg.Log.File = ExpandHome(cfg.Log.File)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnsureDataDir creates the data directory if it does not exist.
func EnsureDataDir(cfg *Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
