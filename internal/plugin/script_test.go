package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	lua "github.com/yuin/gopher-lua"

	plua "github.com/scry-re/scry/internal/plugin/lua"
)

func writeModule(t *testing.T, dir, file, code string) {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// pluginModule renders a well-formed plugin module whose lifecycle
// calls append to the setup_log and term_log globals.
func pluginModule(name, version string) string {
	return fmt.Sprintf(`local M = {}
function M.create_scry_plugin()
    return {
        name = %q,
        description = "test plugin",
        version = %q,
        author = "tester",
        setup = function(self) setup_log = (setup_log or "") .. %q .. ";" end,
        terminate = function(self) term_log = (term_log or "") .. %q .. ";" end,
    }
end
return M
`, name, version, name, name)
}

func luaGlobal(t *testing.T, rt *plua.Runtime, name string) string {
	t.Helper()
	var out string
	err := rt.Do(func(l *lua.LState) error {
		if s, ok := l.GetGlobal(name).(lua.LString); ok {
			out = string(s)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	return out
}

func TestScriptLoaderLoadsPlugin(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "greeter.lua", pluginModule("Greeter", "1.2.0"))

	rt := plua.NewRuntime()
	defer rt.Close()
	l := newScriptLoader(rt, testLogger())

	got := l.loadDir(dir)
	if len(got) != 1 {
		t.Fatalf("loadDir() loaded %d plugins, want 1", len(got))
	}

	info := got[0].Plugin.Info()
	if info.Name != "Greeter" {
		t.Errorf("Name = %q, want Greeter", info.Name)
	}
	if info.Version != "1.2.0" {
		t.Errorf("Version = %q, want 1.2.0", info.Version)
	}
	if info.Author != "tester" {
		t.Errorf("Author = %q, want tester", info.Author)
	}
	if got[0].Source.Kind != KindScript || got[0].Source.Path != "greeter" {
		t.Errorf("Source = %v, want script:greeter", got[0].Source)
	}

	if log := luaGlobal(t, rt, "setup_log"); log != "Greeter;" {
		t.Errorf("setup_log = %q, want %q", log, "Greeter;")
	}
	if log := luaGlobal(t, rt, "term_log"); log != "" {
		t.Errorf("term_log = %q, want empty before teardown", log)
	}

	got[0].Plugin.Terminate()
	if log := luaGlobal(t, rt, "term_log"); log != "Greeter;" {
		t.Errorf("term_log = %q, want %q", log, "Greeter;")
	}
}

func TestScriptLoaderFailureIsolation(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "alpha.lua", pluginModule("Alpha", "1"))
	writeModule(t, dir, "broken.lua", `this is not lua (`)
	writeModule(t, dir, "omega.lua", pluginModule("Omega", "1"))

	rt := plua.NewRuntime()
	defer rt.Close()
	l := newScriptLoader(rt, testLogger())

	got := l.loadDir(dir)
	if len(got) != 2 {
		t.Fatalf("loadDir() loaded %d plugins, want 2", len(got))
	}
	if got[0].Plugin.Info().Name != "Alpha" || got[1].Plugin.Info().Name != "Omega" {
		t.Errorf("loaded %q and %q, want Alpha and Omega",
			got[0].Plugin.Info().Name, got[1].Plugin.Info().Name)
	}
}

func TestScriptLoaderRequiresFactory(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "nofactory.lua", `return { name = "not a plugin" }`)

	rt := plua.NewRuntime()
	defer rt.Close()
	l := newScriptLoader(rt, testLogger())

	if got := l.loadDir(dir); len(got) != 0 {
		t.Errorf("loadDir() loaded %d plugins, want 0", len(got))
	}
}

func TestScriptLoaderChecksFactoryResult(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{
			name: "returns a string",
			code: `local M = {}
function M.create_scry_plugin() return "nope" end
return M`,
		},
		{
			name: "missing name",
			code: `local M = {}
function M.create_scry_plugin()
    return { setup = function() end, terminate = function() end }
end
return M`,
		},
		{
			name: "setup not callable",
			code: `local M = {}
function M.create_scry_plugin()
    return { name = "x", setup = "soon", terminate = function() end }
end
return M`,
		},
		{
			name: "missing terminate",
			code: `local M = {}
function M.create_scry_plugin()
    return {
        name = "x",
        setup = function() contract_failed_setup_ran = true end,
    }
end
return M`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeModule(t, dir, "candidate.lua", tt.code)

			rt := plua.NewRuntime()
			defer rt.Close()
			l := newScriptLoader(rt, testLogger())

			if got := l.loadDir(dir); len(got) != 0 {
				t.Errorf("loadDir() loaded %d plugins, want 0", len(got))
			}

			// A module that fails the contract check is never set up.
			var ran bool
			_ = rt.Do(func(ls *lua.LState) error {
				ran = ls.GetGlobal("contract_failed_setup_ran") == lua.LTrue
				return nil
			})
			if ran {
				t.Error("setup ran on a module that failed the contract check")
			}
		})
	}
}

func TestScriptLoaderSetupFailureSkips(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "faulty.lua", `local M = {}
function M.create_scry_plugin()
    return {
        name = "Faulty",
        setup = function(self) error("setup exploded") end,
        terminate = function(self) faulty_terminated = true end,
    }
end
return M`)

	rt := plua.NewRuntime()
	defer rt.Close()
	l := newScriptLoader(rt, testLogger())

	if got := l.loadDir(dir); len(got) != 0 {
		t.Fatalf("loadDir() loaded %d plugins, want 0", len(got))
	}

	var terminated bool
	_ = rt.Do(func(ls *lua.LState) error {
		terminated = ls.GetGlobal("faulty_terminated") == lua.LTrue
		return nil
	})
	if terminated {
		t.Error("terminate ran on a plugin whose setup failed")
	}
}

func TestScriptLoaderDirectoryModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, filepath.Join("bundle", "init.lua"), pluginModule("Bundle", "2"))

	rt := plua.NewRuntime()
	defer rt.Close()
	l := newScriptLoader(rt, testLogger())

	got := l.loadDir(dir)
	if len(got) != 1 {
		t.Fatalf("loadDir() loaded %d plugins, want 1", len(got))
	}
	if got[0].Source.Path != "bundle" {
		t.Errorf("Source.Path = %q, want bundle", got[0].Source.Path)
	}
}

func TestScriptLoaderSkipsNonModules(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, ".hidden.lua", pluginModule("Hidden", "1"))
	writeModule(t, dir, "notes.txt", "not lua")
	if err := os.MkdirAll(filepath.Join(dir, "no-init"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	rt := plua.NewRuntime()
	defer rt.Close()
	l := newScriptLoader(rt, testLogger())

	if got := l.loadDir(dir); len(got) != 0 {
		t.Errorf("loadDir() loaded %d plugins, want 0", len(got))
	}
}

func TestScriptLoaderFirstRootWins(t *testing.T) {
	userDir := t.TempDir()
	sysDir := t.TempDir()
	writeModule(t, userDir, "greeter.lua", pluginModule("Greeter", "user"))
	writeModule(t, sysDir, "greeter.lua", pluginModule("Greeter", "system"))
	writeModule(t, sysDir, "extra.lua", pluginModule("Extra", "system"))

	rt := plua.NewRuntime()
	defer rt.Close()
	l := newScriptLoader(rt, testLogger())

	var got []*ActivePlugin
	got = append(got, l.loadDir(userDir)...)
	got = append(got, l.loadDir(sysDir)...)

	if len(got) != 2 {
		t.Fatalf("loaded %d plugins, want 2", len(got))
	}
	if v := got[0].Plugin.Info().Version; v != "user" {
		t.Errorf("greeter version = %q, want user", v)
	}
	if got[1].Plugin.Info().Name != "Extra" {
		t.Errorf("second plugin = %q, want Extra", got[1].Plugin.Info().Name)
	}
}

func TestScriptLoaderDeclaredDecompiler(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "withdec.lua", `local M = {}
function M.create_scry_plugin()
    return {
        name = "With Decompiler",
        setup = function(self) end,
        terminate = function(self) end,
        decompiler = { id = "pdq", name = "Pseudo-Q", command = "pdq" },
    }
end
return M`)
	writeModule(t, dir, "partialdec.lua", `local M = {}
function M.create_scry_plugin()
    return {
        name = "Partial",
        setup = function(self) end,
        terminate = function(self) end,
        decompiler = { id = "oops" },
    }
end
return M`)

	rt := plua.NewRuntime()
	defer rt.Close()
	l := newScriptLoader(rt, testLogger())

	got := l.loadDir(dir)
	if len(got) != 2 {
		t.Fatalf("loadDir() loaded %d plugins, want 2", len(got))
	}

	byName := map[string]*ActivePlugin{}
	for _, ap := range got {
		byName[ap.Plugin.Info().Name] = ap
	}

	sp := byName["With Decompiler"].Plugin.(*scriptPlugin)
	id, name, cmd, ok := sp.DeclaredDecompiler()
	if !ok {
		t.Fatal("DeclaredDecompiler() ok = false, want true")
	}
	if id != "pdq" || name != "Pseudo-Q" || cmd != "pdq" {
		t.Errorf("DeclaredDecompiler() = %q %q %q", id, name, cmd)
	}

	pp := byName["Partial"].Plugin.(*scriptPlugin)
	if _, _, _, ok := pp.DeclaredDecompiler(); ok {
		t.Error("partial declaration reported a decompiler")
	}
}
