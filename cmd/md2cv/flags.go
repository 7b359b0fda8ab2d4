package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// styleFlags holds style configuration flags.
// Zero values are ignored unless the flag was explicitly set.
type styleFlags struct {
	paper          string
	marginV        float64
	marginH        float64
	fontSize       float64
	lineHeight     float64
	paragraphSpace float64
	themeColor     string
	css            string
}

// engineFlags holds rendering pass flags.
type engineFlags struct {
	frontMatter string
	crossRefs   string
	engine      string
	timeout     string
	assetPath   string
}

// serveFlags holds live preview flags for watch and serve.
type serveFlags struct {
	addr     string
	debounce string
}

// cmdFlags holds all flags of a rendering command.
type cmdFlags struct {
	common  commonFlags
	style   styleFlags
	engine  engineFlags
	serve   serveFlags
	output  string
	json    bool
	preview bool

	// set reports whether a flag was given on the command line.
	set func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show pass details")
}

// addStyleFlags adds style flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVarP(&f.paper, "paper", "p", "", "paper: A4, letter, legal")
	fs.Float64Var(&f.marginV, "margin-v", 0, "top and bottom margin in px")
	fs.Float64Var(&f.marginH, "margin-h", 0, "left and right margin in px")
	fs.Float64Var(&f.fontSize, "font-size", 0, "base font size in px")
	fs.Float64Var(&f.lineHeight, "line-height", 0, "line height multiplier")
	fs.Float64Var(&f.paragraphSpace, "paragraph-space", 0, "space between blocks in px")
	fs.StringVar(&f.themeColor, "theme-color", "", "accent color (#rgb or #rrggbb)")
	fs.StringVar(&f.css, "css", "", "custom CSS file path or inline CSS")
}

// addEngineFlags adds rendering pass flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVar(&f.frontMatter, "front-matter", "", "malformed header policy: error, last, empty")
	fs.StringVar(&f.crossRefs, "cross-refs", "", "citation placement: trailing, inplace")
	fs.StringVar(&f.engine, "engine", "", "measurement engine: browser, metrics")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "browser timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// addServeFlags adds live preview flags to a FlagSet.
func addServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVar(&f.debounce, "debounce", "", "quiet period before re-rendering (e.g., 150ms)")
}

// newCommandFlagSet registers the flags every rendering command accepts.
func newCommandFlagSet(name string, f *cmdFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addStyleFlags(fs, &f.style)
	addEngineFlags(fs, &f.engine)
	f.set = func(n string) bool { return fs.Changed(n) }
	return fs
}

// buildFlagSet creates the FlagSet of a command. The same registration
// backs parsing and help output.
func buildFlagSet(name string, f *cmdFlags) *flag.FlagSet {
	fs := newCommandFlagSet(name, f)
	switch name {
	case "render":
		fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
		fs.BoolVar(&f.json, "json", false, "print a page summary as JSON")
		fs.BoolVar(&f.preview, "preview", false, "write preview markup instead of print markup")
	case "export":
		fs.StringVarP(&f.output, "output", "o", "", "output PDF file or directory")
	case "watch":
		fs.StringVarP(&f.output, "output", "o", "", "output file (.pdf or .html)")
		addServeFlags(fs, &f.serve)
	case "serve":
		fs.StringVar(&f.serve.addr, "addr", "", "listen address (default: 127.0.0.1:8080)")
		addServeFlags(fs, &f.serve)
	}
	return fs
}

// parseCommandFlags parses the flags of a command and returns positional args.
func parseCommandFlags(name string, args []string, stderr io.Writer) (*cmdFlags, []string, error) {
	f := &cmdFlags{}
	fs := buildFlagSet(name, f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printCommandUsage(stderr, name) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
