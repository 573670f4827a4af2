package plugin

import "github.com/scry-re/scry/sdk"

// SourceKind tells how a plugin entered the registry.
type SourceKind int

const (
	// KindNative marks a plugin loaded from a shared object.
	KindNative SourceKind = iota
	// KindScript marks a plugin created by a Lua module.
	KindScript
	// KindBuiltin marks a plugin registered programmatically.
	KindBuiltin
)

// String returns a human-readable kind name.
func (k SourceKind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindScript:
		return "script"
	case KindBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Source identifies where an active plugin came from. Path is the
// shared object's file path for native plugins, the module name for
// scripted ones, and the registration name for builtins.
type Source struct {
	Kind SourceKind
	Path string
}

// String formats the source as kind:path.
func (s Source) String() string {
	return s.Kind.String() + ":" + s.Path
}

// ActivePlugin is a plugin owned by the registry together with its
// provenance.
type ActivePlugin struct {
	Plugin sdk.Plugin
	Source Source
}

// Capabilities returns every active plugin that provides the
// capability T, in load order.
func Capabilities[T any](r *Registry) []T {
	var out []T
	for _, ap := range r.ActivePlugins() {
		if t, ok := ap.Plugin.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
