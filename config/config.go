// Package config handles shell configuration.
//
// Settings come from three layers, later ones winning:
//   - Defaults
//   - The key = value config file (<datadir>/avash.conf unless --config)
//   - Command-line flags
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds the shell's runtime configuration.
type Config struct {
	DataDir string `conf:"datadir"`

	// Remote node
	RPC RPCConfig

	// Command descriptors
	Specs SpecsConfig

	// Pending transaction tracking
	Tracker TrackerConfig

	// REPL input history
	History HistoryConfig

	// Logging
	Log LogConfig

	// ConfigPath overrides ConfigFile (not persisted in config file).
	ConfigPath string
}

// RPCConfig holds remote node settings.
type RPCConfig struct {
	URL     string        `conf:"rpc.url"`
	Timeout time.Duration `conf:"rpc.timeout"`
	Retries int           `conf:"rpc.retries"` // Connect attempts after the first
}

// SpecsConfig holds descriptor settings.
type SpecsConfig struct {
	Dir string `conf:"specs.dir"` // Empty means the embedded descriptors
}

// TrackerConfig holds pending transaction tracker settings.
type TrackerConfig struct {
	Interval time.Duration `conf:"tracker.interval"`
	Expiry   time.Duration `conf:"tracker.expiry"`
	Capacity int           `conf:"tracker.capacity"`
}

// HistoryConfig holds REPL history settings.
type HistoryConfig struct {
	Size     int  `conf:"history.size"`
	Disabled bool `conf:"history.disabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.avash
//	macOS:   ~/Library/Application Support/Avash
//	Windows: %APPDATA%\Avash
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".avash"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Avash")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Avash")
		}
		return filepath.Join(home, "AppData", "Roaming", "Avash")
	default:
		return filepath.Join(home, ".avash")
	}
}

// DBDir returns the local key-value store directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.DataDir, "db")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return filepath.Join(c.DataDir, "avash.conf")
}
