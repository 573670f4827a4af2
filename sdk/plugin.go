package sdk

// Info describes a plugin to the workbench.
type Info struct {
	// Name is the plugin's display name. Required.
	Name string

	// Description is a one-line summary of what the plugin does.
	Description string

	// Version is the plugin's own version string.
	Version string

	// Author identifies the plugin's maintainer.
	Author string
}

// Plugin is the contract every extension module fulfills.
//
// Setup is called exactly once, after the module has passed the
// contract check and before it enters the active set. Terminate is
// called exactly once during registry teardown, and only on plugins
// whose Setup ran. Modules that fail the contract check see neither
// call.
type Plugin interface {
	// Info returns the plugin's metadata.
	Info() Info

	// Setup initializes the plugin.
	Setup()

	// Terminate releases everything the plugin holds.
	Terminate()
}

// As reports whether p provides the capability T and returns it.
//
//	if dec, ok := sdk.As[sdk.Decompiler](p); ok {
//	    dec.DecompileAt(addr)
//	}
func As[T any](p Plugin) (T, bool) {
	t, ok := p.(T)
	return t, ok
}
