package plugin

import "errors"

// Plugin system errors.
var (
	// ErrAlreadyLoaded is returned when LoadPlugins is called more than
	// once on a registry.
	ErrAlreadyLoaded = errors.New("plugins are already loaded")

	// ErrRegistryDestroyed is returned when using a registry after
	// DestroyPlugins.
	ErrRegistryDestroyed = errors.New("plugin registry is destroyed")

	// ErrNilPlugin is returned when registering a nil plugin.
	ErrNilPlugin = errors.New("plugin is nil")

	// ErrBadSymbol is returned when a shared object's plugin symbol
	// does not satisfy the plugin contract.
	ErrBadSymbol = errors.New("symbol does not implement the plugin contract")

	// ErrNotPlugin is returned when a shared object opens cleanly but
	// exports no plugin symbol at all. Such modules are skipped
	// quietly; they are simply not plugins.
	ErrNotPlugin = errors.New("shared object exports no plugin symbol")

	// ErrNoFactory is returned when a script module does not define the
	// plugin factory function.
	ErrNoFactory = errors.New("module does not define create_scry_plugin")

	// ErrBadFactoryResult is returned when the factory's return value
	// cannot serve as a plugin.
	ErrBadFactoryResult = errors.New("factory result does not satisfy the plugin contract")

	// ErrNoUserDir is returned when the per-user plugin directory
	// cannot be determined.
	ErrNoUserDir = errors.New("cannot determine user plugin directory")
)
