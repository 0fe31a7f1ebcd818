package config

import (
	"fmt"
	"net/url"
)

// Validate checks the config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	u, err := url.Parse(cfg.RPC.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("rpc.url must be an http(s) URL, got %q", cfg.RPC.URL)
	}
	if cfg.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be positive")
	}
	if cfg.RPC.Retries < 0 {
		return fmt.Errorf("rpc.retries must not be negative")
	}

	if cfg.Tracker.Interval <= 0 {
		return fmt.Errorf("tracker.interval must be positive")
	}
	if cfg.Tracker.Expiry <= 0 {
		return fmt.Errorf("tracker.expiry must be positive")
	}
	if cfg.Tracker.Capacity < 1 {
		return fmt.Errorf("tracker.capacity must be at least 1")
	}

	if cfg.History.Size < 1 {
		return fmt.Errorf("history.size must be at least 1")
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error", "disabled", "off":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, error or off")
	}
	return nil
}
