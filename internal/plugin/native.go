package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"

	"github.com/sirupsen/logrus"

	"github.com/scry-re/scry/sdk"
)

// NativeSymbol is the exported symbol every shared object must
// provide: a sdk.Plugin value, or a func() sdk.Plugin factory.
const NativeSymbol = "ScryPlugin"

// nativeLoader loads compiled plugins from shared objects.
type nativeLoader struct {
	log *logrus.Logger
}

// loadDir loads every shared object under dir. A module that fails to
// open or fails the contract check is logged at warning level and
// skipped without touching the rest; one without the plugin symbol is
// passed over quietly. The result holds only plugins whose Setup ran.
func (l *nativeLoader) loadDir(dir string) []*ActivePlugin {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Debugf("native plugin dir %s: %v", dir, err)
		}
		return nil
	}

	var out []*ActivePlugin
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		p, err := openNative(path)
		if errors.Is(err, ErrNotPlugin) {
			l.log.Debugf("skipping %s: %v", path, err)
			continue
		}
		if err != nil {
			l.log.Warnf("failed to load native plugin %s: %v", path, err)
			continue
		}
		if err := safeSetup(p); err != nil {
			l.log.Warnf("native plugin %s: %v", path, err)
			continue
		}

		l.log.Debugf("loaded native plugin %s (%s)", p.Info().Name, path)
		out = append(out, &ActivePlugin{
			Plugin: p,
			Source: Source{Kind: KindNative, Path: path},
		})
	}
	return out
}

// openNative opens path and resolves its plugin symbol.
func openNative(path string) (sdk.Plugin, error) {
	so, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	sym, err := so.Lookup(NativeSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", ErrNotPlugin, NativeSymbol)
	}
	return asPlugin(sym)
}

// asPlugin adapts an exported symbol to the plugin contract.
func asPlugin(sym any) (sdk.Plugin, error) {
	switch p := sym.(type) {
	case sdk.Plugin:
		return p, nil
	case *sdk.Plugin:
		if *p == nil {
			return nil, fmt.Errorf("%w: symbol is nil", ErrBadSymbol)
		}
		return *p, nil
	case func() sdk.Plugin:
		inst := p()
		if inst == nil {
			return nil, fmt.Errorf("%w: factory returned nil", ErrBadSymbol)
		}
		return inst, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadSymbol, sym)
	}
}
