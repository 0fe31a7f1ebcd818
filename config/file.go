package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads shell configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	var err error
	switch key {
	case "datadir":
		cfg.DataDir = value

	// Remote node
	case "rpc.url", "rpc":
		cfg.RPC.URL = value
	case "rpc.timeout":
		cfg.RPC.Timeout, err = parseDuration(value)
	case "rpc.retries":
		cfg.RPC.Retries, err = strconv.Atoi(value)

	// Descriptors
	case "specs.dir", "specs":
		cfg.Specs.Dir = value

	// Tracker
	case "tracker.interval":
		cfg.Tracker.Interval, err = parseDuration(value)
	case "tracker.expiry":
		cfg.Tracker.Expiry, err = parseDuration(value)
	case "tracker.capacity":
		cfg.Tracker.Capacity, err = strconv.Atoi(value)

	// History
	case "history.size":
		cfg.History.Size, err = strconv.Atoi(value)
	case "history.disabled":
		cfg.History.Disabled = parseBool(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return err
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseDuration accepts Go durations ("3s", "1m30s") or bare seconds.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// WriteDefaultConfig writes a default shell configuration file.
func WriteDefaultConfig(path string) error {
	d := Default()
	content := `# Avash Shell Configuration

# Data directory (default: ~/.avash)
# datadir = ~/.avash

# ============================================================================
# Node
# ============================================================================

rpc.url = ` + d.RPC.URL + `
rpc.timeout = ` + d.RPC.Timeout.String() + `

# Extra connect attempts at startup and on "info reconnect"
rpc.retries = ` + strconv.Itoa(d.RPC.Retries) + `

# ============================================================================
# Command descriptors
# ============================================================================

# Directory with one sub-directory per context holding .json/.yaml
# descriptors. Empty uses the built-in set.
# specs.dir =

# ============================================================================
# Transaction tracking
# ============================================================================

tracker.interval = ` + d.Tracker.Interval.String() + `
tracker.expiry = ` + d.Tracker.Expiry.String() + `
tracker.capacity = ` + strconv.Itoa(d.Tracker.Capacity) + `

# ============================================================================
# History
# ============================================================================

history.size = ` + strconv.Itoa(d.History.Size) + `
# history.disabled = false

# ============================================================================
# Logging
# ============================================================================

log.level = ` + d.Log.Level + `
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
