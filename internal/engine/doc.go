// Package engine connects the workbench to its analysis engine.
//
// The engine is an external binary-analysis backend (radare2 or a
// compatible fork) addressed entirely through its textual command
// language. This package deliberately knows nothing about that
// language: callers hand it opaque command strings and receive opaque
// output.
//
// # Runner
//
// Runner is the single synchronous primitive. ExecRunner implements it
// by spawning the engine binary per command:
//
//	run := engine.NewExecRunner(engine.ExecConfig{
//	    Path:   "r2",
//	    Args:   []string{"-q"},
//	    Target: "/bin/ls",
//	}, logger)
//	out, err := run.Command(ctx, "iI")
//
// # Tasks
//
// Task wraps one command execution for callers that must not block.
// The command runs on a background goroutine; completion is observable
// through Done() and OnFinished handlers and is delivered exactly once:
//
//	task := engine.NewTask(run, "aflj")
//	task.OnFinished(func() {
//	    use(task.Output(), task.Err())
//	})
//	task.Start(ctx)
//
// # Profiles
//
// Engine invocations are described by named profiles loadable from a
// YAML file, so a workbench install can switch between a system
// radare2, a pinned build, or a wrapper script without code changes.
package engine
