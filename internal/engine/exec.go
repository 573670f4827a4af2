package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Default execution limits.
const (
	DefaultCommandTimeout = 30 * time.Second
	DefaultMaxParallel    = 4
)

// ExecConfig describes how to invoke the engine binary.
type ExecConfig struct {
	// Path is the engine executable, e.g. "r2".
	Path string

	// Args are base arguments prepended to every invocation.
	Args []string

	// Target is the file under analysis, appended after the command.
	// Optional; probe commands work without one.
	Target string

	// Timeout bounds a single command. Zero means DefaultCommandTimeout.
	Timeout time.Duration

	// MaxParallel caps concurrent engine processes. Zero means
	// DefaultMaxParallel.
	MaxParallel int64
}

// DefaultExecConfig returns a config for a stock radare2 install.
func DefaultExecConfig() ExecConfig {
	return ExecConfig{
		Path:        "r2",
		Args:        []string{"-q"},
		Timeout:     DefaultCommandTimeout,
		MaxParallel: DefaultMaxParallel,
	}
}

// ExecRunner runs engine commands by spawning the engine binary per
// command: <path> <args...> -c <cmd> [target]. Concurrency is bounded
// by a weighted semaphore so a burst of plugin activity cannot fork-
// bomb the host.
type ExecRunner struct {
	cfg ExecConfig
	sem *semaphore.Weighted
	log *logrus.Logger
}

// NewExecRunner creates a runner for the given config. A nil logger
// falls back to the logrus default.
func NewExecRunner(cfg ExecConfig, log *logrus.Logger) *ExecRunner {
	if log == nil {
		log = logrus.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCommandTimeout
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultMaxParallel
	}
	return &ExecRunner{
		cfg: cfg,
		sem: semaphore.NewWeighted(cfg.MaxParallel),
		log: log,
	}
}

// Command implements Runner.
func (r *ExecRunner) Command(ctx context.Context, cmd string) (string, error) {
	if strings.TrimSpace(cmd) == "" {
		return "", ErrEmptyCommand
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("engine busy: %w", err)
	}
	defer r.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	args := make([]string, 0, len(r.cfg.Args)+3)
	args = append(args, r.cfg.Args...)
	args = append(args, "-c", cmd)
	if r.cfg.Target != "" {
		args = append(args, r.cfg.Target)
	}

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, r.cfg.Path, args...)
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	start := time.Now()
	err := proc.Run()
	r.log.Debugf("engine %s %q took %s", r.cfg.Path, cmd, time.Since(start))

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("engine command %q: %w", cmd, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("engine command %q: %w: %s", cmd, err, msg)
		}
		return "", fmt.Errorf("engine command %q: %w", cmd, err)
	}
	return stdout.String(), nil
}
