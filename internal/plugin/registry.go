package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	plua "github.com/scry-re/scry/internal/plugin/lua"
	"github.com/scry-re/scry/sdk"
)

type phase int

const (
	phaseIdle phase = iota
	phaseLoaded
	phaseDestroyed
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Resolver locates plugin directories. Nil uses DefaultDirConfig.
	Resolver *Resolver

	// Scripting enables the Lua loader.
	Scripting bool

	// Runtime is the shared interpreter for scripted plugins. Nil with
	// Scripting set creates one owned, and eventually closed, by the
	// registry.
	Runtime *plua.Runtime

	// Log receives load diagnostics. Nil uses the logrus default.
	Log *logrus.Logger
}

// DefaultRegistryConfig returns the standard workbench configuration.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{Scripting: true}
}

// Registry owns every loaded plugin for the life of the process.
//
// The lifecycle is strictly one-way: LoadPlugins runs at most once,
// DestroyPlugins tears everything down, and there is no reload. A
// change in the plugin directories takes effect on the next start.
type Registry struct {
	mu      sync.RWMutex
	phase   phase
	plugins []*ActivePlugin

	resolver  *Resolver
	scripting bool
	rt        *plua.Runtime
	ownsRT    bool
	native    *nativeLoader
	script    *scriptLoader
	log       *logrus.Logger
}

// NewRegistry creates a registry from cfg.
func NewRegistry(cfg RegistryConfig) *Registry {
	log := cfg.Log
	if log == nil {
		log = logrus.New()
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewResolver(DefaultDirConfig(), log)
	}

	r := &Registry{
		resolver:  resolver,
		scripting: cfg.Scripting,
		native:    &nativeLoader{log: log},
		log:       log,
	}
	if cfg.Scripting {
		r.rt = cfg.Runtime
		if r.rt == nil {
			r.rt = plua.NewRuntime()
			r.ownsRT = true
		}
		r.script = newScriptLoader(r.rt, log)
	}
	return r
}

// Runtime returns the shared interpreter, or nil when scripting is
// disabled. Use it to install host modules before LoadPlugins.
func (r *Registry) Runtime() *plua.Runtime { return r.rt }

// LoadPlugins discovers and loads every plugin from the search roots,
// user root first, native modules before scripted ones within each
// root. It runs at most once per registry; a second call returns
// ErrAlreadyLoaded.
//
// With enabled false nothing is scanned and nothing is written to
// disk; the registry still moves past the loading phase so the active
// set is stably empty.
//
// Individual module failures are logged and skipped. LoadPlugins only
// returns an error for lifecycle misuse, never for a bad plugin.
func (r *Registry) LoadPlugins(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.phase {
	case phaseLoaded:
		return ErrAlreadyLoaded
	case phaseDestroyed:
		return ErrRegistryDestroyed
	}
	r.phase = phaseLoaded

	if !enabled {
		r.log.Info("plugins are disabled")
		return nil
	}

	// The per-user root is created on first run so it resolves below
	// and users have a drop location even before installing anything.
	if user, err := r.resolver.UserRoot(); err != nil {
		r.log.Warnf("user plugin directory: %v", err)
	} else if err := os.MkdirAll(user, 0o755); err != nil {
		r.log.Warnf("user plugin directory: %v", err)
	}

	for _, root := range r.resolver.Roots() {
		if root.Writable {
			if err := ensureLoaderDirs(root.Path, r.scripting); err != nil {
				r.log.Warnf("plugin directories under %s: %v", root.Path, err)
			}
		}
		if n := r.loadRoot(root); n > 0 {
			r.log.Infof("loaded %d plugin(s) from %s", n, root.Path)
		}
	}
	return nil
}

func (r *Registry) loadRoot(root SearchRoot) int {
	n := 0
	for _, ap := range r.native.loadDir(filepath.Join(root.Path, NativeSubdir)) {
		r.plugins = append(r.plugins, ap)
		n++
	}
	if r.script != nil {
		for _, ap := range r.script.loadDir(filepath.Join(root.Path, ScriptSubdir)) {
			r.plugins = append(r.plugins, ap)
			n++
		}
	}
	return n
}

// Register adds a plugin constructed in-process, such as the bundled
// decompiler. Setup runs before the plugin joins the active set; a
// Setup panic is returned as an error and the plugin stays out.
func (r *Registry) Register(p sdk.Plugin, name string) error {
	if p == nil {
		return ErrNilPlugin
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == phaseDestroyed {
		return ErrRegistryDestroyed
	}
	if err := safeSetup(p); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}

	r.plugins = append(r.plugins, &ActivePlugin{
		Plugin: p,
		Source: Source{Kind: KindBuiltin, Path: name},
	})
	return nil
}

// ActivePlugins returns a snapshot of the loaded plugins in load
// order.
func (r *Registry) ActivePlugins() []*ActivePlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ActivePlugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Count returns the number of active plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Loaded reports whether LoadPlugins has run.
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase != phaseIdle
}

// DestroyPlugins terminates every active plugin in load order and
// releases them, then closes the interpreter if the registry owns it.
// Calling it on a never-loaded or already-destroyed registry is a
// no-op.
func (r *Registry) DestroyPlugins() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == phaseDestroyed {
		return
	}
	r.phase = phaseDestroyed

	for _, ap := range r.plugins {
		r.terminate(ap)
	}
	r.plugins = nil

	if r.ownsRT && r.rt != nil {
		r.rt.Close()
	}
}

func (r *Registry) terminate(ap *ActivePlugin) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("plugin %s: terminate panic: %v", ap.Source, rec)
		}
	}()
	ap.Plugin.Terminate()
}

// safeSetup runs Setup, converting a panic into an error so one broken
// module cannot abort a load pass.
func safeSetup(p sdk.Plugin) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("setup panic: %v", rec)
		}
	}()
	p.Setup()
	return nil
}
