package main

import (
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"

	md2cv "github.com/alnah/go-md2cv"
)

// runTemplate lists the resume templates, prints one, or writes
// it to a directory as resume.md and resume.css.
func runTemplate(args []string, env *Environment) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var dir, assetPath string
	fs.StringVarP(&dir, "output", "o", "", "write resume.md and resume.css into this directory")
	fs.StringVar(&assetPath, "asset-path", "", "custom asset directory")
	fs.Usage = func() { printCommandUsage(env.Stderr, "template") }
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if fs.NArg() > 1 {
		return fmt.Errorf("%w: expected one template name, got %d", ErrTooManyArgs, fs.NArg())
	}

	var opts []md2cv.Option
	if assetPath != "" {
		opts = append(opts, md2cv.WithAssetPath(assetPath))
	}
	// Templates never measure; the metrics engine avoids a browser launch.
	opts = append(opts, md2cv.WithMeasureEngine(md2cv.MeasureMetrics))
	engine, err := env.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer func() { _ = engine.Close() }()

	if fs.NArg() == 0 {
		for _, name := range engine.TemplateNames() {
			fmt.Fprintln(env.Stdout, name)
		}
		return nil
	}

	set, err := engine.LoadTemplate(fs.Arg(0))
	if err != nil {
		return err
	}

	if dir == "" {
		fmt.Fprint(env.Stdout, set.Markdown)
		return nil
	}

	md := filepath.Join(dir, "resume.md")
	if err := writeOutput(md, []byte(set.Markdown)); err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, md)
	if set.CSS != "" {
		css := filepath.Join(dir, "resume.css")
		if err := writeOutput(css, []byte(set.CSS)); err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, css)
	}
	return nil
}
