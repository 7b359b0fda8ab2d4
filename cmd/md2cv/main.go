package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	logf := func(string, ...any) {}
	if slices.Contains(os.Args[1:], "-v") || slices.Contains(os.Args[1:], "--verbose") {
		logf = func(format string, args ...any) { fmt.Fprintf(os.Stderr, format+"\n", args...) }
	}
	// Set fails only on an invalid GOMAXPROCS, leaving the runtime default.
	_, _ = maxprocs.Set(maxprocs.Logger(logf))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runners are the commands that report through an error.
var runners = map[string]func(context.Context, []string, *Environment) error{
	"render": runRender,
	"export": runExport,
	"watch":  runWatch,
	"serve":  runServe,
	"template": func(_ context.Context, args []string, env *Environment) error {
		return runTemplate(args, env)
	},
}

// runMain dispatches the command in args[1] and returns the exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}
	cmd, rest := args[1], args[2:]

	switch cmd {
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "md2cv %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env)
		return ExitSuccess
	}

	run, ok := runners[cmd]
	if !ok {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := run(ctx, rest, env)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
}
