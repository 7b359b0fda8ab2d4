// Package md2cv renders resume Markdown into fixed-size pages for screen
// preview and print, so what is edited matches what is exported.
//
// # Quick Start
//
// Create an engine, render a document, and close when done:
//
//	eng, err := md2cv.NewEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	res, err := eng.Render(ctx, md2cv.Input{
//	    Markdown: "---\nname: Jane Doe\n---\n## Experience\n\nEngineer",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf, err := eng.ExportPDF(ctx, res)
//
// # Rendering Pass
//
// Every pass recomputes everything from the raw text:
//
//  1. Front matter extraction (name and header items, YAML)
//  2. Markdown to typed blocks via Goldmark (GFM, definition lists, math,
//     citations, commands, icons, page breaks), sanitized with an allow-list
//  3. Style composition: base, configuration and custom layers
//  4. Measurement of every block on a surface with the page's content width
//  5. Greedy, forward-only pagination into pages of the configured paper
//
// Blocks are atomic: a block taller than a page sits alone on a page flagged
// Oversize. A \newpage block always opens a new page.
//
// # Configuration
//
// Use functional options to customize the engine:
//
//	eng, err := md2cv.NewEngine(
//	    md2cv.WithMeasureEngine(md2cv.MeasureMetrics),
//	    md2cv.WithFrontMatterPolicy(md2cv.FrontMatterLast),
//	    md2cv.WithCrossRefPlacement(md2cv.CrossRefInPlace),
//	)
//
// Per-document style is passed via Input:
//
//	style := md2cv.DefaultStyleConfiguration()
//	style.Paper = "letter"
//	style.ThemeColor = "#1d4ed8"
//	res, err := eng.Render(ctx, md2cv.Input{Markdown: md, Style: &style})
//
// # Live Preview
//
// A Session debounces edits, cancels superseded passes and publishes the
// latest pages atomically:
//
//	s := md2cv.NewSession(ctx, eng, md2cv.WithOnPublish(func(r *md2cv.Result) {
//	    fmt.Println(r.PageCount(), "pages")
//	}))
//	s.SetMarkdown(md)
//
// # Output
//
// PrintHTML, PreviewHTML and ThumbnailHTML serialize pages; ExportPDF prints
// them through headless Chrome with one page per paginated page.
package md2cv
