package plugin

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Change describes a mutation observed in a plugin directory. Plugins
// are never reloaded at runtime, so consumers surface a Change as a
// restart hint.
type Change struct {
	Path string
	Op   string
}

// Watcher observes the loader subdirectories of the search roots for
// new, changed, or removed modules.
type Watcher struct {
	fsw     *fsnotify.Watcher
	log     *logrus.Logger
	changes chan Change

	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher watches the loader subdirectories of roots. Directories
// that do not exist are skipped.
func NewWatcher(roots []SearchRoot, scripting bool, log *logrus.Logger) (*Watcher, error) {
	if log == nil {
		log = logrus.New()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		log:     log,
		changes: make(chan Change, 16),
		done:    make(chan struct{}),
	}

	for _, root := range roots {
		dirs := []string{filepath.Join(root.Path, NativeSubdir)}
		if scripting {
			dirs = append(dirs, filepath.Join(root.Path, ScriptSubdir))
		}
		for _, dir := range dirs {
			if err := fsw.Add(dir); err != nil {
				log.Debugf("not watching %s: %v", dir, err)
			}
		}
	}

	go w.loop()
	return w, nil
}

// Changes returns the channel of observed mutations. It is closed when
// the watcher shuts down.
func (w *Watcher) Changes() <-chan Change { return w.changes }

func (w *Watcher) loop() {
	defer close(w.changes)

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Permission churn is not a module change.
			if ev.Op.Has(fsnotify.Chmod) && ev.Op&^fsnotify.Chmod == 0 {
				continue
			}
			select {
			case w.changes <- Change{Path: ev.Name, Op: ev.Op.String()}:
			default:
				// Consumer is behind; drop rather than block the loop.
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("plugin watcher: %v", err)
		}
	}
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}
