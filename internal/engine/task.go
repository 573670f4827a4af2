package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TaskState represents the state of a backend task.
type TaskState int32

const (
	// TaskCreated indicates the task has been created but not started.
	TaskCreated TaskState = iota
	// TaskRunning indicates the command is executing.
	TaskRunning
	// TaskFinished indicates the command completed and the result is set.
	TaskFinished
)

// String returns a human-readable state name.
func (s TaskState) String() string {
	switch s {
	case TaskCreated:
		return "created"
	case TaskRunning:
		return "running"
	case TaskFinished:
		return "finished"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Task runs one engine command off the caller's goroutine.
//
// A Task is single-shot: Start begins execution at most once, the
// result is immutable after completion, and completion is delivered
// exactly once through the Done channel and the OnFinished handlers.
// Tasks are safe for concurrent use.
type Task struct {
	id     string
	cmd    string
	runner Runner
	log    *logrus.Logger

	// done is closed when the command completes.
	done chan struct{}

	state     atomic.Int32
	startOnce sync.Once

	mu       sync.Mutex
	output   string
	err      error
	handlers []func()
}

// NewTask creates a task that will run cmd on runner. A nil logger
// falls back to the logrus default.
func NewTask(runner Runner, cmd string, log *logrus.Logger) *Task {
	if log == nil {
		log = logrus.New()
	}
	t := &Task{
		id:     uuid.New().String(),
		cmd:    cmd,
		runner: runner,
		log:    log,
		done:   make(chan struct{}),
	}
	t.state.Store(int32(TaskCreated))
	return t
}

// ID returns the task's unique identifier.
func (t *Task) ID() string { return t.id }

// Cmd returns the engine command the task runs.
func (t *Task) Cmd() string { return t.cmd }

// State returns the current task state.
func (t *Task) State() TaskState {
	return TaskState(t.state.Load())
}

// Done returns a channel that is closed when the task completes.
func (t *Task) Done() <-chan struct{} { return t.done }

// Output returns the engine output. Valid once the task has finished;
// empty before that.
func (t *Task) Output() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.output
}

// Err returns the execution error, if any. Valid once the task has
// finished.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// OnFinished registers fn to run when the task completes. Handlers
// registered after completion run immediately on the caller's
// goroutine, so a late subscriber never misses the signal.
func (t *Task) OnFinished(fn func()) {
	t.mu.Lock()
	if t.State() != TaskFinished {
		t.handlers = append(t.handlers, fn)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	t.callHandler(fn)
}

// Start launches the command on a background goroutine. Calling Start
// again is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		t.state.Store(int32(TaskRunning))
		t.log.Debugf("engine task %s: %s", t.id, t.cmd)
		go t.run(ctx)
	})
}

func (t *Task) run(ctx context.Context) {
	out, err := t.runner.Command(ctx, t.cmd)

	t.mu.Lock()
	t.output = out
	t.err = err
	t.state.Store(int32(TaskFinished))
	handlers := t.handlers
	t.handlers = nil
	t.mu.Unlock()

	if err != nil {
		t.log.Warnf("engine task %s failed: %v", t.id, err)
	}

	close(t.done)
	for _, fn := range handlers {
		t.callHandler(fn)
	}
}

// callHandler isolates handler panics from the task goroutine.
func (t *Task) callHandler(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Errorf("engine task %s: finished handler panic: %v", t.id, r)
		}
	}()
	fn()
}
