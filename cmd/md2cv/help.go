package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// commandHelp describes one command for usage output.
type commandHelp struct {
	usage   string
	summary string
}

var commands = []struct {
	name string
	help commandHelp
}{
	{"render", commandHelp{"md2cv render <input.md> [flags]", "Render a resume to paginated HTML"}},
	{"export", commandHelp{"md2cv export <input.md> [flags]", "Export a resume to PDF"}},
	{"watch", commandHelp{"md2cv watch <input.md> [flags]", "Re-export a resume whenever it changes"}},
	{"serve", commandHelp{"md2cv serve <input.md> [flags]", "Serve a live preview over HTTP"}},
	{"template", commandHelp{"md2cv template [name] [flags]", "List, print or write built-in templates"}},
	{"doctor", commandHelp{"md2cv doctor [--json]", "Check the rendering environment"}},
	{"version", commandHelp{"md2cv version", "Show version information"}},
	{"help", commandHelp{"md2cv help [command]", "Show help for a command"}},
}

func lookupCommand(name string) (commandHelp, bool) {
	for _, c := range commands {
		if c.name == name {
			return c.help, true
		}
	}
	return commandHelp{}, false
}

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2cv <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.help.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2cv help <command>' for details on a specific command.")
}

// printCommandUsage prints usage and flags of one command.
// Flag lines come from the same FlagSet the command parses with.
func printCommandUsage(w io.Writer, name string) {
	h, ok := lookupCommand(name)
	if !ok {
		printUsage(w)
		return
	}
	fmt.Fprintf(w, "Usage: %s\n", h.usage)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s.\n", h.summary)

	switch name {
	case "render", "export", "watch", "serve":
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprint(w, buildFlagSet(name, &cmdFlags{}).FlagUsages())
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Environment:")
		for _, v := range slices.Sorted(maps.Keys(knownEnvVars)) {
			fmt.Fprintf(w, "  %s\n", v)
		}
	case "template":
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "  -o, --output <dir>     Write resume.md and resume.css into dir")
		fmt.Fprintln(w, "      --asset-path <dir> Custom asset directory")
	case "doctor":
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "      --json    Print the report as JSON")
	}
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}
	if _, ok := lookupCommand(args[0]); !ok {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return
	}
	printCommandUsage(env.Stdout, args[0])
}
