package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	md2cv "github.com/alnah/go-md2cv"
)

// runWatch re-writes the output each time the input or its stylesheet
// changes. The output is PDF unless it ends in .html.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	p, err := prepare("watch", args, env)
	if err != nil {
		return err
	}
	defer p.Close()

	ext := ".pdf"
	if strings.EqualFold(filepath.Ext(p.flags.output), ".html") {
		ext = ".html"
	}

	publish := func(res *md2cv.Result) {
		warnOversize(p.settings.log, res)
		out := outputPath(p.flags.output, p.settings.outputDir, p.input, res, ext)
		if err := writePublished(ctx, p.engine, res, out, ext); err != nil {
			p.settings.log.Warn("writing output"+hintFor(err), zap.Error(err))
			return
		}
		if !p.flags.common.quiet {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d %s)\n", p.input, out, res.PageCount(), plural(res.PageCount(), "page"))
		}
	}

	l, err := startLive(ctx, p, md2cv.WithOnPublish(publish))
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	p.settings.log.Info("watching", zap.Strings("paths", l.paths()))
	return watchFiles(ctx, l.paths(), p.settings.log, l.changed)
}

// writePublished serializes res as print markup or PDF and writes it to out.
func writePublished(ctx context.Context, engine *md2cv.Engine, res *md2cv.Result, out, ext string) error {
	if ext == ".html" {
		return writeOutput(out, []byte(md2cv.PrintHTML(res)))
	}
	data, err := engine.ExportPDF(ctx, res)
	if err != nil {
		return err
	}
	return writeOutput(out, data)
}
