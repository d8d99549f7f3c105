// Package config loads the CLI's engine defaults from a TOML file.
// Everything is explicit state handed to the supervisor at startup;
// there are no package-level caches.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"shepherd/pkg/supervise"
)

// Config holds engine defaults for supervised runs.
type Config struct {
	// Binary is the default executable to supervise when the command
	// line does not name one.
	Binary string `toml:"binary"`

	// GracePeriod is the SIGTERM-to-SIGKILL escalation timeout, as a
	// Go duration string ("2s", "500ms").
	GracePeriod string `toml:"grace_period"`

	// BufferSize is the merged event channel capacity.
	BufferSize int `toml:"buffer_size"`

	// LockFile, when set, adds a lock guard so only one supervised
	// instance runs at a time.
	LockFile string `toml:"lock_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		GracePeriod: supervise.DefaultGracePeriod.String(),
		BufferSize:  supervise.DefaultBufferSize,
	}
}

// Load reads path and overlays it onto the defaults. A missing file
// is not an error; it just yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if _, err := cfg.Grace(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Grace parses the configured grace period.
func (c *Config) Grace() (time.Duration, error) {
	d, err := time.ParseDuration(c.GracePeriod)
	if err != nil {
		return 0, fmt.Errorf("invalid grace_period %q: %w", c.GracePeriod, err)
	}
	return d, nil
}

// Options translates the configuration into supervisor options.
func (c *Config) Options() ([]supervise.Option, error) {
	grace, err := c.Grace()
	if err != nil {
		return nil, err
	}
	opts := []supervise.Option{
		supervise.WithGracePeriod(grace),
		supervise.WithBufferSize(c.BufferSize),
	}
	if c.LockFile != "" {
		opts = append(opts, supervise.WithGuards(supervise.LockGuard(c.LockFile)))
	}
	return opts, nil
}
