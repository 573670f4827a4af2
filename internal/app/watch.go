package app

import (
	"context"

	"github.com/scry-re/scry/internal/plugin"
)

// Watch logs plugin directory changes until ctx ends. The running set
// never reloads; a change is a hint to restart.
func (app *Application) Watch(ctx context.Context) error {
	w, err := plugin.NewWatcher(app.resolver.Roots(), app.scripting, app.log)
	if err != nil {
		return err
	}
	defer w.Close()

	app.log.Info("watching plugin directories, changes apply on restart")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-w.Changes():
			if !ok {
				return nil
			}
			app.log.Infof("plugin change %s: %s", ch.Op, ch.Path)
		}
	}
}
