package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

//go:generate go run ../tools/schema-generator/

// WatchConfig controls where agentwatch looks for agent artifacts and how
// aggressively it watches them.
type WatchConfig struct {
	// StatusDir is the directory agents write {externalSessionId}.json
	// snapshot files into. Defaults to the XDG state status dir.
	StatusDir string `yaml:"status_dir,omitempty" toml:"status_dir,omitempty" jsonschema:"description=Directory containing per-session status snapshot files"`

	// SessionMapDir is the directory holding external-to-stable session id
	// mapping files. Defaults to the XDG data session-map dir.
	SessionMapDir string `yaml:"session_map_dir,omitempty" toml:"session_map_dir,omitempty" jsonschema:"description=Directory containing session id bridge files"`

	// PollInterval is the fallback polling cadence for transcript files,
	// used when filesystem notifications are unavailable or missed.
	// Accepts Go duration syntax, e.g. "2s".
	PollInterval string `yaml:"poll_interval,omitempty" toml:"poll_interval,omitempty" jsonschema:"description=Fallback polling interval for transcript files (Go duration)"`

	// Debounce is the quiet period applied to bursts of filesystem events
	// before a file is re-read. Accepts Go duration syntax, e.g. "100ms".
	Debounce string `yaml:"debounce,omitempty" toml:"debounce,omitempty" jsonschema:"description=Debounce window for filesystem event bursts (Go duration)"`
}

// PollIntervalDuration returns the configured poll interval, or the default
// when unset or unparseable.
func (w *WatchConfig) PollIntervalDuration() time.Duration {
	if w != nil && w.PollInterval != "" {
		if d, err := time.ParseDuration(w.PollInterval); err == nil && d > 0 {
			return d
		}
	}
	return 2 * time.Second
}

// DebounceDuration returns the configured debounce window, or the default
// when unset or unparseable.
func (w *WatchConfig) DebounceDuration() time.Duration {
	if w != nil && w.Debounce != "" {
		if d, err := time.ParseDuration(w.Debounce); err == nil && d >= 0 {
			return d
		}
	}
	return 100 * time.Millisecond
}

// DaemonConfig holds settings for the agentwatch daemon.
type DaemonConfig struct {
	// SocketPath overrides the unix socket the daemon listens on.
	SocketPath string `yaml:"socket_path,omitempty" toml:"socket_path,omitempty" jsonschema:"description=Unix socket path for the daemon API"`

	// PidFile overrides the daemon pidfile location.
	PidFile string `yaml:"pid_file,omitempty" toml:"pid_file,omitempty" jsonschema:"description=Pidfile path for the daemon"`
}

// Config represents the agentwatch.yml configuration.
type Config struct {
	Name    string `yaml:"name,omitempty" toml:"name,omitempty" jsonschema:"description=Name of this agentwatch deployment"`
	Version string `yaml:"version" toml:"version" jsonschema:"description=Configuration version (e.g. 1.0)"`

	Watch  *WatchConfig  `yaml:"watch,omitempty" toml:"watch,omitempty" jsonschema:"description=Watcher paths and timing"`
	Daemon *DaemonConfig `yaml:"daemon,omitempty" toml:"daemon,omitempty" jsonschema:"description=Daemon socket and pidfile settings"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" jsonschema:"-"`
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Watch == nil {
		c.Watch = &WatchConfig{}
	}
	if c.Daemon == nil {
		c.Daemon = &DaemonConfig{}
	}
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded agentwatch.yml into the provided target struct. The target must be a
// pointer. This provides a type-safe way for extensions to access their
// custom configuration sections.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{}
	// into the strongly-typed target struct, keyed by yaml tags.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
