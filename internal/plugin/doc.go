// Package plugin discovers, loads, and owns the workbench's extension
// modules.
//
// Two module formats are supported. Native plugins are Go shared
// objects (buildmode=plugin) exporting a ScryPlugin symbol; scripted
// plugins are Lua modules run on one shared interpreter. Both resolve
// to the same sdk.Plugin contract and live side by side in the
// Registry.
//
// # Search roots
//
// Plugins are discovered under an ordered list of roots:
//
//	~/.local/share/scry/plugins      (per-user, created on first load)
//	/usr/local/share/scry/plugins
//	/usr/share/scry/plugins
//	$SCRY_EXTRA_PLUGIN_DIRS          (list-separated extras)
//
// Each root holds a native/ subdirectory for shared objects and a lua/
// subdirectory for script modules. The per-user root is scanned first;
// when two roots provide a script module with the same name, the
// earlier root wins.
//
// # Lifecycle
//
//	reg := plugin.NewRegistry(plugin.DefaultRegistryConfig())
//	if err := reg.LoadPlugins(true); err != nil { ... }
//	defer reg.DestroyPlugins()
//
// LoadPlugins runs at most once per process; there is no reload.
// A module that cannot be opened, lacks the contract, or fails during
// its own initialization is logged and skipped. One broken module
// never blocks its neighbors.
//
// # Scripted plugins
//
// A Lua plugin module returns a table whose create_scry_plugin
// function builds the plugin:
//
//	local M = {}
//	function M.create_scry_plugin()
//	    return {
//	        name = "My Plugin",
//	        description = "does things",
//	        version = "1.0.0",
//	        author = "someone",
//	        setup = function(self) end,
//	        terminate = function(self) end,
//	    }
//	end
//	return M
//
// The returned table may also declare a command-backed decompiler:
//
//	decompiler = { id = "pdq", name = "Pseudo-Q", command = "pdq" }
//
// # Capabilities
//
// Use Capabilities to collect a capability across the active set:
//
//	for _, dec := range plugin.Capabilities[sdk.Decompiler](reg) {
//	    fmt.Println(dec.ID())
//	}
package plugin
