package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	plua "github.com/scry-re/scry/internal/plugin/lua"
	"github.com/scry-re/scry/sdk"
)

// ScriptFactory is the function every Lua plugin module must define.
// It takes no arguments and returns the plugin table.
const ScriptFactory = "create_scry_plugin"

// scriptLoader imports Lua plugin modules on the shared interpreter.
type scriptLoader struct {
	rt  *plua.Runtime
	log *logrus.Logger

	// seen tracks module names across roots; the first root to provide
	// a name wins.
	seen map[string]bool
}

func newScriptLoader(rt *plua.Runtime, log *logrus.Logger) *scriptLoader {
	return &scriptLoader{rt: rt, log: log, seen: make(map[string]bool)}
}

// loadDir imports every plugin module under dir. The interpreter lock
// is held for the whole pass: path setup, imports, factory calls, and
// setup calls all happen inside one critical section. A module that
// fails at any step is logged and skipped; its setup never runs.
func (l *scriptLoader) loadDir(dir string) []*ActivePlugin {
	names := l.moduleNames(dir)
	if len(names) == 0 {
		return nil
	}

	var out []*ActivePlugin
	err := l.rt.Do(func(L *lua.LState) error {
		if err := plua.AppendPath(L, dir); err != nil {
			return err
		}
		for _, name := range names {
			p, err := l.loadModule(L, name)
			if err != nil {
				l.log.Warnf("failed to load script plugin %s: %v", name, err)
				continue
			}
			out = append(out, &ActivePlugin{
				Plugin: p,
				Source: Source{Kind: KindScript, Path: name},
			})
		}
		return nil
	})
	if err != nil {
		l.log.Warnf("script plugin pass for %s: %v", dir, err)
	}
	return out
}

// moduleNames scans dir for importable plugin modules. Single files
// import by their name with the .lua suffix stripped; a directory is a
// module when it carries an init.lua. Hidden entries and names already
// claimed by a higher-precedence root are skipped.
func (l *scriptLoader) moduleNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Debugf("script plugin dir %s: %v", dir, err)
		}
		return nil
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			if _, err := os.Stat(filepath.Join(dir, name, "init.lua")); err != nil {
				l.log.Debugf("skipping %s: not a module", filepath.Join(dir, name))
				continue
			}
		} else {
			if !strings.HasSuffix(name, ".lua") {
				continue
			}
			name = strings.TrimSuffix(name, ".lua")
		}

		if l.seen[name] {
			l.log.Debugf("script module %s already provided by an earlier root", name)
			continue
		}
		l.seen[name] = true
		names = append(names, name)
	}
	return names
}

// loadModule imports one module and builds its plugin. The state is
// already held by the surrounding pass.
func (l *scriptLoader) loadModule(L *lua.LState, name string) (sdk.Plugin, error) {
	mod, err := plua.ImportModule(L, name)
	if err != nil {
		return nil, err
	}
	tbl, err := plua.AsTable(mod)
	if err != nil {
		return nil, fmt.Errorf("module value: %w", err)
	}

	factory, ok := plua.TableFunc(tbl, ScriptFactory)
	if !ok {
		return nil, ErrNoFactory
	}

	top := L.GetTop()
	L.Push(factory)
	if err := L.PCall(0, 1, nil); err != nil {
		L.SetTop(top)
		return nil, fmt.Errorf("%s: %w", ScriptFactory, err)
	}
	res := L.Get(-1)
	L.SetTop(top)

	p, err := newScriptPlugin(l.rt, name, res, l.log)
	if err != nil {
		return nil, err
	}
	if err := p.setupLocked(L); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return p, nil
}

// scriptPlugin adapts a factory-built Lua table to the plugin
// contract. Its lifecycle methods re-enter the shared interpreter
// under the runtime lock; the loader instead calls setupLocked inside
// its own pass.
type scriptPlugin struct {
	rt     *plua.Runtime
	log    *logrus.Logger
	module string

	tbl       *lua.LTable
	setup     *lua.LFunction
	terminate *lua.LFunction
	info      sdk.Info

	// declared command-backed decompiler, when present
	decID   string
	decName string
	decCmd  string
	hasDec  bool
}

// newScriptPlugin validates the factory result: a table with a name
// string and callable setup and terminate fields. Optional metadata
// (description, version, author) and a decompiler declaration are read
// here as well.
func newScriptPlugin(rt *plua.Runtime, module string, v lua.LValue, log *logrus.Logger) (*scriptPlugin, error) {
	tbl, err := plua.AsTable(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFactoryResult, err)
	}

	name, ok := plua.TableString(tbl, "name")
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrBadFactoryResult)
	}
	setup, ok := plua.TableFunc(tbl, "setup")
	if !ok {
		return nil, fmt.Errorf("%w: setup is not a function", ErrBadFactoryResult)
	}
	term, ok := plua.TableFunc(tbl, "terminate")
	if !ok {
		return nil, fmt.Errorf("%w: terminate is not a function", ErrBadFactoryResult)
	}

	p := &scriptPlugin{
		rt:        rt,
		log:       log,
		module:    module,
		tbl:       tbl,
		setup:     setup,
		terminate: term,
		info:      sdk.Info{Name: name},
	}
	p.info.Description, _ = plua.TableString(tbl, "description")
	p.info.Version, _ = plua.TableString(tbl, "version")
	p.info.Author, _ = plua.TableString(tbl, "author")

	if dec, ok := plua.TableTable(tbl, "decompiler"); ok {
		id, _ := plua.TableString(dec, "id")
		cmd, _ := plua.TableString(dec, "command")
		if id == "" || cmd == "" {
			log.Warnf("script plugin %s: decompiler declaration needs id and command, ignoring", module)
		} else {
			p.decID, p.decCmd = id, cmd
			p.decName, _ = plua.TableString(dec, "name")
			if p.decName == "" {
				p.decName = id
			}
			p.hasDec = true
		}
	}
	return p, nil
}

// Info implements sdk.Plugin.
func (p *scriptPlugin) Info() sdk.Info { return p.info }

// Setup implements sdk.Plugin. The script loader performs setup inside
// its import pass; this path serves plugins registered outside it.
func (p *scriptPlugin) Setup() {
	err := p.rt.Do(func(L *lua.LState) error {
		return p.setupLocked(L)
	})
	if err != nil {
		p.log.Warnf("script plugin %s: setup: %v", p.module, err)
	}
}

func (p *scriptPlugin) setupLocked(l *lua.LState) error {
	return plua.CallMethod(l, p.setup, p.tbl)
}

// Terminate implements sdk.Plugin.
func (p *scriptPlugin) Terminate() {
	err := p.rt.Do(func(L *lua.LState) error {
		return plua.CallMethod(L, p.terminate, p.tbl)
	})
	if err != nil {
		p.log.Warnf("script plugin %s: terminate: %v", p.module, err)
	}
}

// DeclaredDecompiler reports the command-backed decompiler the plugin
// declared, if any.
func (p *scriptPlugin) DeclaredDecompiler() (id, name, command string, ok bool) {
	return p.decID, p.decName, p.decCmd, p.hasDec
}
