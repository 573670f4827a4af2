// Package app assembles the workbench and manages its lifecycle. It
// wires the configuration, the engine connection, the plugin registry,
// and the decompiler capabilities collected from the active plugins.
package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/scry-re/scry/internal/config"
	"github.com/scry-re/scry/internal/decomp"
	"github.com/scry-re/scry/internal/engine"
	"github.com/scry-re/scry/internal/plugin"
	"github.com/scry-re/scry/sdk"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses the
	// standard location.
	ConfigPath string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// Target is the binary handed to the engine.
	Target string

	// NoPlugins skips plugin loading regardless of configuration.
	NoPlugins bool

	// NoScripting disables the Lua loader regardless of configuration.
	NoScripting bool
}

// Application is the assembled workbench.
type Application struct {
	opts Options
	cfg  config.Config
	log  *logrus.Logger

	resolver  *plugin.Resolver
	registry  *plugin.Registry
	scripting bool

	runner engine.Runner
	decs   []sdk.Decompiler
}

// New builds the application and loads the plugin set.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes the components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Configuration; everything below reads it.
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return err
	}
	app.cfg = cfg

	// 2. Logging
	app.log = logrus.New()
	level := cfg.LogLevel()
	if app.opts.LogLevel != "" {
		lvl, err := logrus.ParseLevel(app.opts.LogLevel)
		if err != nil {
			return fmt.Errorf("%w: %q", config.ErrBadLogLevel, app.opts.LogLevel)
		}
		level = lvl
	}
	app.log.SetLevel(level)

	// 3. Engine connection
	runner, err := app.buildRunner()
	if err != nil {
		return err
	}
	app.runner = runner

	// 4. Plugin registry
	app.scripting = cfg.Plugins.Scripting && !app.opts.NoScripting
	dirCfg := plugin.DefaultDirConfig()
	dirCfg.ExtraDirs = cfg.Plugins.ExtraDirs
	app.resolver = plugin.NewResolver(dirCfg, app.log)
	app.registry = plugin.NewRegistry(plugin.RegistryConfig{
		Resolver:  app.resolver,
		Scripting: app.scripting,
		Log:       app.log,
	})

	// The bundled decompiler joins before the directory scan, as a
	// capability of the engine itself rather than a discovered module.
	if err := app.registry.Register(decomp.NewPdcPlugin(app.runner, app.log), "pdc"); err != nil {
		return err
	}

	enabled := cfg.Plugins.Enabled && !app.opts.NoPlugins
	if err := app.registry.LoadPlugins(enabled); err != nil {
		return err
	}

	// 5. Capability collection
	app.decs = decomp.Collect(app.registry, app.runner, app.log)
	return nil
}

// buildRunner assembles the engine runner from configuration. A
// selected profile replaces the inline engine settings.
func (app *Application) buildRunner() (engine.Runner, error) {
	if app.cfg.Engine.Profile != "" {
		if app.cfg.Engine.ProfilesPath == "" {
			return nil, ErrNoProfilesPath
		}
		profiles, err := engine.LoadProfiles(app.cfg.Engine.ProfilesPath)
		if err != nil {
			return nil, err
		}
		p, err := engine.FindProfile(profiles, app.cfg.Engine.Profile)
		if err != nil {
			return nil, err
		}
		return engine.NewExecRunner(p.ExecConfig(app.opts.Target), app.log), nil
	}

	ecfg := engine.DefaultExecConfig()
	if app.cfg.Engine.Path != "" {
		ecfg.Path = app.cfg.Engine.Path
	}
	if len(app.cfg.Engine.Args) > 0 {
		ecfg.Args = app.cfg.Engine.Args
	}
	ecfg.Target = app.opts.Target
	return engine.NewExecRunner(ecfg, app.log), nil
}

// Log returns the application logger.
func (app *Application) Log() *logrus.Logger { return app.log }

// Config returns the loaded configuration.
func (app *Application) Config() config.Config { return app.cfg }

// Plugins returns the active plugin set in load order.
func (app *Application) Plugins() []*plugin.ActivePlugin {
	return app.registry.ActivePlugins()
}

// Decompilers returns every decompiler the active set provides.
func (app *Application) Decompilers() []sdk.Decompiler { return app.decs }

// Shutdown terminates the plugin set. Safe to call more than once.
func (app *Application) Shutdown() {
	app.registry.DestroyPlugins()
}
