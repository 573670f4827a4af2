// Package lua embeds the gopher-lua interpreter that hosts scripted
// plugins. One Runtime is shared by every scripted plugin in the
// process; all interpreter access is serialized through Do.
package lua

import (
	"fmt"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Runtime wraps a single gopher-lua LState behind a mutex.
//
// gopher-lua's LState is not goroutine-safe, and scripted plugins keep
// live references into it for their whole lifetime, so the state is
// never handed out unlocked. Every caller enters through Do and holds
// the interpreter exclusively until its function returns.
type Runtime struct {
	mu     sync.Mutex
	l      *lua.LState
	closed bool
}

// NewRuntime creates a runtime with the full Lua standard library
// opened. Scripted plugins are trusted extensions, the same trust the
// native loader extends to shared objects, so no sandboxing is applied.
func NewRuntime() *Runtime {
	return &Runtime{l: lua.NewState()}
}

// Do runs fn with exclusive access to the interpreter. The lock is held
// until fn returns, so a caller may perform a multi-step pass (adjust
// search paths, import several modules, call into them) as one critical
// section. Panics raised by Lua code are recovered and returned as
// errors.
func (r *Runtime) Do(fn func(L *lua.LState) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	return runRecovered(r.l, fn)
}

func runRecovered(l *lua.LState, fn func(L *lua.LState) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn(l)
}

// AddPath appends dir to the interpreter's module search path so that
// require("name") resolves dir/name.lua and dir/name/init.lua.
func (r *Runtime) AddPath(dir string) error {
	return r.Do(func(l *lua.LState) error {
		return AppendPath(l, dir)
	})
}

// Import loads a module by name with require semantics. Modules are
// memoized by the interpreter: importing the same name twice returns
// the cached value without re-executing the script.
func (r *Runtime) Import(name string) (lua.LValue, error) {
	var v lua.LValue
	err := r.Do(func(l *lua.LState) error {
		var ierr error
		v, ierr = ImportModule(l, name)
		return ierr
	})
	return v, err
}

// RegisterModule installs a global table of Go functions, making host
// functionality callable from scripts.
func (r *Runtime) RegisterModule(name string, funcs map[string]lua.LGFunction) error {
	return r.Do(func(l *lua.LState) error {
		mod := l.SetFuncs(l.NewTable(), funcs)
		l.SetGlobal(name, mod)
		return nil
	})
}

// Closed reports whether the runtime has been shut down.
func (r *Runtime) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close shuts the interpreter down. Further Do calls return
// ErrRuntimeClosed. Close is idempotent.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.l.Close()
	r.closed = true
}

// AppendPath appends dir to package.path on an already-held state.
// Intended for use inside a Do block.
func AppendPath(l *lua.LState, dir string) error {
	pkg, ok := l.GetGlobal("package").(*lua.LTable)
	if !ok {
		return fmt.Errorf("package library is not loaded")
	}

	entry := filepath.Join(dir, "?.lua") + ";" + filepath.Join(dir, "?", "init.lua")
	if cur := lua.LVAsString(pkg.RawGetString("path")); cur != "" {
		entry = cur + ";" + entry
	}
	pkg.RawSetString("path", lua.LString(entry))
	return nil
}

// ImportModule requires a module by name on an already-held state and
// returns its value. Intended for use inside a Do block.
func ImportModule(l *lua.LState, name string) (lua.LValue, error) {
	req, ok := l.GetGlobal("require").(*lua.LFunction)
	if !ok {
		return lua.LNil, fmt.Errorf("require is not available")
	}

	top := l.GetTop()
	l.Push(req)
	l.Push(lua.LString(name))
	if err := l.PCall(1, 1, nil); err != nil {
		l.SetTop(top)
		return lua.LNil, err
	}
	v := l.Get(-1)
	l.SetTop(top)
	return v, nil
}
