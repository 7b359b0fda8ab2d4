package md2cv

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-md2cv/internal/fileutil"
	"github.com/alnah/go-md2cv/internal/layout"
	"github.com/alnah/go-md2cv/internal/styles"
)

// pdfRenderer abstracts HTML to PDF rendering to enable testing without a browser.
type pdfRenderer interface {
	RenderPDF(ctx context.Context, document string) ([]byte, error)
	Close() error
}

// Page chrome class names.
const (
	printPageClass    = "md2cv-print-page"
	previewPageClass  = "md2cv-page"
	previewNumClass   = "md2cv-page-number"
	thumbnailClass    = "md2cv-thumbnail"
	oversizePageClass = "oversize"
)

// rootIDPattern limits thumbnail roots to identifiers usable unescaped in
// CSS selectors and HTML attributes.
var rootIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// PrintHTML serializes pages into a standalone print document. The @page
// size matches the geometry and every page boundary is one forced break,
// so the printed pages match the paginated ones.
func PrintHTML(res *Result) string {
	g := res.Geometry

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(res.Title("Resume")) + "</title>\n")
	if res.mathAssets != "" {
		b.WriteString(mathHead(res.mathAssets))
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(`<div id="` + surfaceID + `">` + "\n")
	for _, p := range res.Pages {
		b.WriteString(`<div class="` + printPageClass + `">`)
		b.WriteString(p.Markup())
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
	if res.mathAssets != "" {
		b.WriteString(mathTypeset(""))
	}
	b.WriteString("</body>\n</html>\n")

	return styles.InjectCSS(b.String(), printCSS(g)+res.Sheet.Scoped(surfaceID).CSS())
}

// printCSS sizes the physical page and inserts one break per page boundary.
func printCSS(g Geometry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@page {\n  size: %smm %smm;\n  margin: %spx %spx %spx %spx;\n}\n",
		mm(g.Width), mm(g.Height), px(g.MarginTop), px(g.MarginRight), px(g.MarginBottom), px(g.MarginLeft))
	b.WriteString("html,\nbody {\n  margin: 0;\n  padding: 0;\n}\n")
	fmt.Fprintf(&b, ".%s {\n  break-after: page;\n}\n", printPageClass)
	fmt.Fprintf(&b, ".%s:last-child {\n  break-after: auto;\n}\n", printPageClass)
	return b.String()
}

// PreviewHTML serializes all pages for screen preview. Each page is a fixed
// size box whose content sits in its own isolation boundary.
func (e *Engine) PreviewHTML(res *Result) string {
	g := res.Geometry
	sheet := res.Sheet.Scoped(surfaceID)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(res.Title("Resume")) + "</title>\n")
	var mathLink string
	if res.mathAssets != "" {
		b.WriteString(mathHead(res.mathAssets))
		mathLink = mathStylesheet(res.mathAssets)
	}
	b.WriteString("</head>\n<body>\n")
	for _, p := range res.Pages {
		class := previewPageClass
		if p.Oversize {
			class += " " + oversizePageClass
		}
		fmt.Fprintf(&b, `<section class="%s" data-page="%d" style="%s">`, class, p.Index+1, pageBoxStyle(g))
		b.WriteString(styles.Isolate(sheet, "", mathLink+`<div id="`+surfaceID+`">`+p.Markup()+`</div>`))
		b.WriteString("</section>\n")
		fmt.Fprintf(&b, `<div class="%s">%d / %d</div>`+"\n", previewNumClass, p.Index+1, len(res.Pages))
	}
	if res.mathAssets != "" {
		b.WriteString(mathTypeset(""))
	}
	b.WriteString("</body>\n</html>\n")

	return styles.InjectCSS(b.String(), e.previewCSS())
}

// ThumbnailHTML serializes the first page as a fragment styled under rootID,
// for embedding in a host document without an isolation boundary. rootID
// must start with a letter and hold only letters, digits, '-' and '_'.
func ThumbnailHTML(res *Result, rootID string) (string, error) {
	if !rootIDPattern.MatchString(rootID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRootID, rootID)
	}

	var first layout.Page
	if len(res.Pages) > 0 {
		first = res.Pages[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div id="%s" class="%s" style="%s overflow: hidden;">`,
		rootID, thumbnailClass, pageBoxStyle(res.Geometry))
	b.WriteString(styles.StyleElement(res.Sheet.Scoped(rootID).CSS()))
	b.WriteString(first.Markup())
	b.WriteString("</div>")
	if res.mathAssets != "" {
		b.WriteString(mathHead(res.mathAssets))
		b.WriteString(mathTypeset(rootID))
	}
	return b.String(), nil
}

// pageBoxStyle sizes a page box with its margins as padding.
func pageBoxStyle(g Geometry) string {
	return fmt.Sprintf("box-sizing: border-box; width: %spx; height: %spx; padding: %spx %spx %spx %spx;",
		px(g.Width), px(g.Height), px(g.MarginTop), px(g.MarginRight), px(g.MarginBottom), px(g.MarginLeft))
}

// ExportPDF renders the pages of res to PDF through headless Chrome.
func (e *Engine) ExportPDF(ctx context.Context, res *Result) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if res == nil || len(res.Pages) == 0 {
		return nil, ErrNoPages
	}
	if e.isClosed() {
		return nil, ErrEngineClosed
	}

	data, err = e.pdf.RenderPDF(ctx, PrintHTML(res))
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	e.log.Debug("exported PDF", zap.Int("pages", len(res.Pages)), zap.Int("bytes", len(data)))
	return data, nil
}

const fontsReadyScript = `() => document.fonts.ready.then(() => true)`

// rodPDF implements pdfRenderer using go-rod.
type rodPDF struct {
	browser *browser
}

// RenderPDF opens the document from a temporary file and prints it with the
// page size its CSS declares.
func (r *rodPDF) RenderPDF(ctx context.Context, document string) ([]byte, error) {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(document, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	rb, err := r.browser.connect()
	if err != nil {
		return nil, err
	}

	page, err := rb.Page(proto.TargetCreateTarget{URL: fileURL(path)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout, err := r.browser.deadline(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Web fonts (KaTeX) must be ready before printing.
	if _, err := page.Timeout(timeout).Eval(fontsReadyScript); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: waiting for fonts: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PreferCSSPageSize: true,
		PrintBackground:   true,
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// Close is a no-op; the engine owns the shared browser.
func (r *rodPDF) Close() error {
	return nil
}

var _ pdfRenderer = (*rodPDF)(nil)

// fileURL converts a local path to a file:// URL.
func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

func px(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}

func mm(v float64) string {
	return strconv.FormatFloat(round2(v/layout.PixelsPerMM), 'f', -1, 64)
}
