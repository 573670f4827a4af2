package decomp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/scry-re/scry/internal/engine"
	"github.com/scry-re/scry/sdk"
)

// availabilityProbe lists the engine's registered decompiler handlers,
// one id per line.
const availabilityProbe = "e cmd.pdc=?"

// CmdDecompiler is a decompiler backed by a single engine command. The
// command must print the decompilation payload understood by
// ParsePayload when invoked at an address.
//
// Requests are single-flight: DecompileAt while a run is in flight is
// dropped silently, so a slow backend never accumulates concurrent
// runs. The in-flight task is released before the finished signal
// fires, which makes re-invoking from a finished handler safe.
type CmdDecompiler struct {
	sdk.Emitter

	id     string
	name   string
	cmd    string
	runner engine.Runner
	log    *logrus.Logger

	mu   sync.Mutex
	task *engine.Task
}

// NewCmdDecompiler builds a decompiler that runs cmd through runner.
// The id doubles as the handler name checked by IsAvailable.
func NewCmdDecompiler(id, name, cmd string, runner engine.Runner, log *logrus.Logger) *CmdDecompiler {
	if log == nil {
		log = logrus.New()
	}
	return &CmdDecompiler{
		id:     id,
		name:   name,
		cmd:    cmd,
		runner: runner,
		log:    log,
	}
}

// ID returns the stable identifier.
func (d *CmdDecompiler) ID() string { return d.id }

// DisplayName returns the human-readable name.
func (d *CmdDecompiler) DisplayName() string { return d.name }

// IsAvailable asks the engine for its registered handlers and looks
// for this decompiler's id among them.
func (d *CmdDecompiler) IsAvailable(ctx context.Context) bool {
	out, err := d.runner.Command(ctx, availabilityProbe)
	if err != nil {
		d.log.Debugf("decompiler %s: availability probe: %v", d.id, err)
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == d.id {
			return true
		}
	}
	return false
}

// DecompileAt starts decompilation of the function at addr. The result
// arrives through the finished subscribers; with a run already in
// flight the request is dropped.
func (d *CmdDecompiler) DecompileAt(addr uint64) {
	d.mu.Lock()
	if d.task != nil {
		d.mu.Unlock()
		d.log.Debugf("decompiler %s: busy, dropped request at %d", d.id, addr)
		return
	}
	task := engine.NewTask(d.runner, fmt.Sprintf("%s @ %d", d.cmd, addr), d.log)
	d.task = task
	d.mu.Unlock()

	task.OnFinished(func() { d.finish(task) })
	task.Start(context.Background())
}

func (d *CmdDecompiler) finish(task *engine.Task) {
	out, err := task.Output(), task.Err()

	// Back to idle before anyone hears about the result, so a handler
	// may immediately request the next address.
	d.mu.Lock()
	d.task = nil
	d.mu.Unlock()

	if err != nil {
		d.EmitFinished(sdk.Warning(fmt.Sprintf("Decompilation command %q failed: %v", d.cmd, err)))
		return
	}
	code, ok := ParsePayload([]byte(out))
	if !ok {
		d.EmitFinished(sdk.Warning(fmt.Sprintf("Failed to parse JSON from %s", d.cmd)))
		return
	}
	d.EmitFinished(code)
}
