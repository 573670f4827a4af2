package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Loader subdirectories inside every search root.
const (
	// NativeSubdir holds shared objects.
	NativeSubdir = "native"
	// ScriptSubdir holds Lua modules.
	ScriptSubdir = "lua"
)

// DefaultExtraDirsEnv names the environment variable listing extra
// plugin roots, separated by the platform's list separator.
const DefaultExtraDirsEnv = "SCRY_EXTRA_PLUGIN_DIRS"

// SearchRoot is one plugin directory in precedence order.
type SearchRoot struct {
	Path string

	// Writable marks the per-user root, the only one the workbench
	// creates and installs into.
	Writable bool
}

// DirConfig configures directory resolution.
type DirConfig struct {
	// AppName names the per-user data subdirectory. Empty means "scry".
	AppName string

	// UserDir overrides the computed per-user root. Empty computes
	// $XDG_DATA_HOME/<app>/plugins, falling back to
	// ~/.local/share/<app>/plugins.
	UserDir string

	// SystemDirs are the read-only install roots, highest precedence
	// first.
	SystemDirs []string

	// ExtraDirs are configured roots tried after the system ones.
	ExtraDirs []string

	// EnvVar overrides the extra-roots environment variable name.
	// Empty means DefaultExtraDirsEnv.
	EnvVar string
}

// DefaultDirConfig returns the standard search locations.
func DefaultDirConfig() DirConfig {
	return DirConfig{
		AppName: "scry",
		SystemDirs: []string{
			"/usr/local/share/scry/plugins",
			"/usr/share/scry/plugins",
		},
		EnvVar: DefaultExtraDirsEnv,
	}
}

// Resolver computes the ordered plugin search roots: the per-user root
// first, then system roots, then configured extras, then any roots
// named by the environment. Duplicates resolve once, keeping their
// earliest (highest-precedence) position.
type Resolver struct {
	cfg DirConfig
	log *logrus.Logger
}

// NewResolver creates a resolver. A nil logger falls back to the
// logrus default.
func NewResolver(cfg DirConfig, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	if cfg.AppName == "" {
		cfg.AppName = "scry"
	}
	if cfg.EnvVar == "" {
		cfg.EnvVar = DefaultExtraDirsEnv
	}
	return &Resolver{cfg: cfg, log: log}
}

// UserRoot returns the per-user plugin directory without creating it.
func (r *Resolver) UserRoot() (string, error) {
	if r.cfg.UserDir != "" {
		return r.cfg.UserDir, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, r.cfg.AppName, "plugins"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoUserDir, err)
	}
	return filepath.Join(home, ".local", "share", r.cfg.AppName, "plugins"), nil
}

// ensureLoaderDirs creates the loader subdirectories under a writable
// root so users always have a place to drop plugins into.
func ensureLoaderDirs(root string, scripting bool) error {
	subdirs := []string{NativeSubdir}
	if scripting {
		subdirs = append(subdirs, ScriptSubdir)
	}
	for _, sub := range subdirs {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return fmt.Errorf("create plugin directory: %w", err)
		}
	}
	return nil
}

// Roots returns the ordered, deduplicated search roots that exist on
// disk. A missing or unreadable candidate is dropped, never an error.
func (r *Resolver) Roots() []SearchRoot {
	var out []SearchRoot
	seen := make(map[string]bool)

	add := func(path string, writable bool) {
		if path == "" {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if seen[abs] {
			return
		}
		seen[abs] = true

		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			r.log.Debugf("plugin root %s not present, skipping", abs)
			return
		}
		out = append(out, SearchRoot{Path: abs, Writable: writable})
	}

	if user, err := r.UserRoot(); err == nil {
		add(user, true)
	} else {
		r.log.Warnf("user plugin directory unavailable: %v", err)
	}
	for _, dir := range r.cfg.SystemDirs {
		add(dir, false)
	}
	for _, dir := range r.cfg.ExtraDirs {
		add(dir, false)
	}
	for _, dir := range filepath.SplitList(os.Getenv(r.cfg.EnvVar)) {
		add(dir, false)
	}
	return out
}
