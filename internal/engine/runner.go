package engine

import "context"

// Runner executes engine commands synchronously.
//
// Implementations must be safe for concurrent use; the plugin runtime
// shares one Runner between every capability that talks to the engine.
type Runner interface {
	// Command runs cmd and returns the engine's textual output.
	Command(ctx context.Context, cmd string) (string, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd string) (string, error)

// Command calls f.
func (f RunnerFunc) Command(ctx context.Context, cmd string) (string, error) {
	return f(ctx, cmd)
}
