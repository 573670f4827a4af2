// Package sdk defines the contract between the scry workbench and its
// plugins.
//
// Plugins compiled as shared objects must be built against the same
// module version as the workbench and import this package for type
// identity; everything else about the runtime lives in internal
// packages on purpose.
//
// # Plugin contract
//
// A plugin implements Plugin and is handed to the workbench in one of
// three ways: exported from a shared object, returned by a Lua module's
// create_scry_plugin factory, or registered programmatically by the
// embedding application.
//
// Shared objects export a symbol named ScryPlugin in one of these
// forms:
//
//	var ScryPlugin sdk.Plugin = &myPlugin{}
//
//	func ScryPlugin() sdk.Plugin { return &myPlugin{} }
//
// # Capabilities
//
// Anything beyond the lifecycle is a capability: an additional
// interface implemented by the same value and discovered by type
// assertion. Decompiler is the capability this package ships; the
// pattern extends to new capabilities without touching the loader.
package sdk
