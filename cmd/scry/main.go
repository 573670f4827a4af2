// Package main is the entry point for the scry workbench.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scry-re/scry/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// actions are the mutually exclusive things one invocation can do.
type actions struct {
	list       bool
	decompile  string
	decompiler string
	watch      bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, act := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	switch {
	case act.list:
		listPlugins(application)
		return 0

	case act.decompile != "":
		addr, err := app.ParseAddress(act.decompile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		code, err := application.Decompile(ctx, act.decompiler, addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Print(code.Text)
		if len(code.Text) > 0 && code.Text[len(code.Text)-1] != '\n' {
			fmt.Println()
		}
		return 0

	case act.watch:
		if err := application.Watch(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0

	default:
		listPlugins(application)
		return 0
	}
}

func listPlugins(application *app.Application) {
	plugins := application.Plugins()
	fmt.Printf("%d plugin(s) loaded\n", len(plugins))
	for _, p := range plugins {
		info := p.Plugin.Info()
		fmt.Printf("  %-24s %-10s %s\n", info.Name, info.Version, p.Source)
	}

	decs := application.Decompilers()
	if len(decs) == 0 {
		return
	}
	fmt.Printf("%d decompiler(s) available\n", len(decs))
	for _, d := range decs {
		fmt.Printf("  %-24s %s\n", d.ID(), d.DisplayName())
	}
}

func parseFlags() (app.Options, actions) {
	var opts app.Options
	var act actions
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Target, "target", "", "Binary for the engine to analyze")
	flag.StringVar(&opts.Target, "t", "", "Binary for the engine to analyze (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.NoPlugins, "no-plugins", false, "Skip plugin loading")
	flag.BoolVar(&opts.NoScripting, "no-scripting", false, "Disable the Lua plugin loader")
	flag.BoolVar(&act.list, "list", false, "List loaded plugins and decompilers")
	flag.BoolVar(&act.list, "l", false, "List loaded plugins and decompilers (shorthand)")
	flag.StringVar(&act.decompile, "decompile", "", "Decompile the function at the given address")
	flag.StringVar(&act.decompiler, "decompiler", "pdc", "Decompiler id to use with -decompile")
	flag.BoolVar(&act.watch, "watch", false, "Watch plugin directories for changes")
	flag.BoolVar(&act.watch, "w", false, "Watch plugin directories for changes (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Scry - binary analysis workbench\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scry [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  scry -list                          Show the loaded plugin set\n")
		fmt.Fprintf(os.Stderr, "  scry -t ./a.out -decompile 0x1000   Decompile the function at 0x1000\n")
		fmt.Fprintf(os.Stderr, "  scry -watch                         Report plugin directory changes\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Scry %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts, act
}
