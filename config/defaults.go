package config

import "time"

// Default returns the default shell configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			URL:     "http://127.0.0.1:9650",
			Timeout: 10 * time.Second,
			Retries: 3,
		},
		Tracker: TrackerConfig{
			Interval: 3 * time.Second,
			Expiry:   60 * time.Second,
			Capacity: 10,
		},
		History: HistoryConfig{
			Size: 500,
		},
		Log: LogConfig{
			// The REPL shares the terminal with log output.
			Level: "warn",
			JSON:  false,
		},
	}
}
