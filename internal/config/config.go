// Package config loads the workbench's runtime configuration from a
// single TOML file. A missing file is normal; every field has a
// default.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// PathEnv names the environment variable that overrides the config
// file location.
const PathEnv = "SCRY_CONFIG"

// Config is the workbench runtime configuration.
type Config struct {
	Plugins Plugins `toml:"plugins"`
	Log     Log     `toml:"log"`
	Engine  Engine  `toml:"engine"`
}

// Plugins configures plugin discovery and loading.
type Plugins struct {
	// Enabled gates all plugin loading. Off means an empty plugin set
	// and no writes to the user plugin directory.
	Enabled bool `toml:"enabled"`

	// Scripting enables the Lua loader.
	Scripting bool `toml:"scripting"`

	// ExtraDirs are additional search roots, tried after the user and
	// system roots.
	ExtraDirs []string `toml:"extra_dirs"`
}

// Log configures diagnostics.
type Log struct {
	// Level is a logrus level name such as "info" or "debug".
	Level string `toml:"level"`
}

// Engine configures the analysis engine connection.
type Engine struct {
	// Path is the engine executable. Empty keeps the built-in default.
	Path string `toml:"path"`

	// Args are prepended to every engine invocation.
	Args []string `toml:"args"`

	// Profile selects a named entry from the profile catalog.
	Profile string `toml:"profile"`

	// ProfilesPath locates the YAML profile catalog.
	ProfilesPath string `toml:"profiles_path"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Plugins: Plugins{Enabled: true, Scripting: true},
		Log:     Log{Level: "info"},
	}
}

// DefaultPath returns the config file location: $SCRY_CONFIG first,
// then $XDG_CONFIG_HOME/scry/config.toml, then
// ~/.config/scry/config.toml. Empty when no home directory exists.
func DefaultPath() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scry", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "scry", "config.toml")
}

// Load reads the TOML file at path, or at DefaultPath when path is
// empty. Values present in the file override the defaults; a missing
// file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values without touching the file system.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrBadLogLevel, c.Log.Level)
	}
	return nil
}

// LogLevel returns the configured logrus level, info when unset or
// unparseable.
func (c Config) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
