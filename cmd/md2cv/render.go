package main

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	md2cv "github.com/alnah/go-md2cv"
	"github.com/alnah/go-md2cv/internal/hints"
)

// pass holds the state of one parsed command and its rendered result.
type pass struct {
	flags    *cmdFlags
	settings *settings
	input    string
	engine   *md2cv.Engine
	result   *md2cv.Result
}

// Close releases the engine.
func (p *pass) Close() {
	if p.engine != nil {
		_ = p.engine.Close()
	}
}

// prepare parses flags, resolves settings and creates an engine.
func prepare(name string, args []string, env *Environment) (*pass, error) {
	f, positional, err := parseCommandFlags(name, args, env.Stderr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	path, err := inputPath(positional)
	if err != nil {
		return nil, err
	}
	s, err := resolveSettings(f, env)
	if err != nil {
		return nil, err
	}
	engine, err := env.NewEngine(s.opts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return &pass{flags: f, settings: s, input: path, engine: engine}, nil
}

// renderFile prepares a command and runs one rendering pass over its input.
func renderFile(ctx context.Context, name string, args []string, env *Environment) (*pass, error) {
	p, err := prepare(name, args, env)
	if err != nil {
		return nil, err
	}
	in, err := readInput(p.input, p.settings)
	if err != nil {
		p.Close()
		return nil, err
	}
	res, err := p.engine.Render(ctx, in)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.result = res
	warnOversize(p.settings.log, res)
	return p, nil
}

// warnOversize reports pages whose content exceeds the page body.
func warnOversize(log *zap.Logger, res *md2cv.Result) {
	if pages := res.Oversize(); len(pages) > 0 {
		log.Warn("content overflows its page"+hints.ForOversize(pages), zap.Ints("pages", pages))
	}
}

// runRender writes print markup, preview markup or a JSON page summary.
func runRender(ctx context.Context, args []string, env *Environment) error {
	p, err := renderFile(ctx, "render", args, env)
	if err != nil {
		return err
	}
	defer p.Close()

	var out []byte
	switch {
	case p.flags.json:
		out, err = json.MarshalIndent(summarize(p.result), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		out = append(out, '\n')
	case p.flags.preview:
		out = []byte(p.engine.PreviewHTML(p.result))
	default:
		out = []byte(md2cv.PrintHTML(p.result))
	}

	if p.flags.output == "" {
		_, err = env.Stdout.Write(out)
		return err
	}
	if err := writeOutput(p.flags.output, out); err != nil {
		return err
	}
	p.settings.log.Info("wrote markup",
		zap.String("path", p.flags.output),
		zap.Int("pages", p.result.PageCount()))
	return nil
}

// runExport renders the input and writes it as PDF.
func runExport(ctx context.Context, args []string, env *Environment) error {
	p, err := renderFile(ctx, "export", args, env)
	if err != nil {
		return err
	}
	defer p.Close()

	start := env.Now()
	data, err := p.engine.ExportPDF(ctx, p.result)
	if err != nil {
		return err
	}

	out := outputPath(p.flags.output, p.settings.outputDir, p.input, p.result, ".pdf")
	if err := writeOutput(out, data); err != nil {
		return err
	}
	p.settings.log.Debug("exported", zap.Duration("took", env.Now().Sub(start)))
	if !p.flags.common.quiet {
		fmt.Fprintf(env.Stdout, "%s -> %s (%d %s)\n", p.input, out, p.result.PageCount(), plural(p.result.PageCount(), "page"))
	}
	return nil
}

// renderSummary is the JSON page summary printed by render --json.
type renderSummary struct {
	Name                string        `json:"name,omitempty"`
	Paper               string        `json:"paper"`
	Pages               int           `json:"pages"`
	Oversize            []int         `json:"oversize,omitempty"`
	FrontMatterFallback bool          `json:"frontMatterFallback,omitempty"`
	Layout              []pageSummary `json:"layout"`
}

// pageSummary describes one page of a render --json summary.
type pageSummary struct {
	Index     int     `json:"index"`
	Blocks    int     `json:"blocks"`
	Used      float64 `json:"used"`
	Available float64 `json:"available"`
	Oversize  bool    `json:"oversize,omitempty"`
}

func summarize(res *md2cv.Result) renderSummary {
	sum := renderSummary{
		Name:                res.FrontMatter.Name,
		Paper:               res.Style.Paper,
		Pages:               res.PageCount(),
		Oversize:            res.Oversize(),
		FrontMatterFallback: res.FrontMatterFallback,
		Layout:              make([]pageSummary, 0, len(res.Pages)),
	}
	for _, pg := range res.Pages {
		sum.Layout = append(sum.Layout, pageSummary{
			Index:     pg.Index,
			Blocks:    len(pg.Blocks),
			Used:      pg.Used,
			Available: pg.Geometry.AvailableHeight(),
			Oversize:  pg.Oversize,
		})
	}
	return sum
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
