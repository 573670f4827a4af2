package decomp

import (
	"github.com/sirupsen/logrus"

	"github.com/scry-re/scry/internal/engine"
	"github.com/scry-re/scry/internal/plugin"
	"github.com/scry-re/scry/sdk"
)

// declarer is how script adapters advertise a command-backed
// decompiler without depending on this package.
type declarer interface {
	DeclaredDecompiler() (id, name, command string, ok bool)
}

// Collect returns every decompiler the active plugin set provides, in
// load order. Plugins implementing sdk.Decompiler are used directly;
// plugins that merely declare a decompilation command get a
// CmdDecompiler on runner. When two plugins claim the same id the
// earlier one wins, matching search-root precedence.
func Collect(reg *plugin.Registry, runner engine.Runner, log *logrus.Logger) []sdk.Decompiler {
	if log == nil {
		log = logrus.New()
	}

	var out []sdk.Decompiler
	seen := make(map[string]bool)
	keep := func(d sdk.Decompiler) {
		if seen[d.ID()] {
			log.Warnf("decompiler %s provided twice, keeping the first", d.ID())
			return
		}
		seen[d.ID()] = true
		out = append(out, d)
	}

	for _, ap := range reg.ActivePlugins() {
		if d, ok := sdk.As[sdk.Decompiler](ap.Plugin); ok {
			keep(d)
			continue
		}
		if decl, ok := sdk.As[declarer](ap.Plugin); ok {
			if id, name, cmd, ok := decl.DeclaredDecompiler(); ok {
				keep(NewCmdDecompiler(id, name, cmd, runner, log))
			}
		}
	}
	return out
}

// Find returns the decompiler with the given id, or nil when the
// active set does not provide it.
func Find(decs []sdk.Decompiler, id string) sdk.Decompiler {
	for _, d := range decs {
		if d.ID() == id {
			return d
		}
	}
	return nil
}
