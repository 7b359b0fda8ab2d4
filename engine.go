package md2cv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/alnah/go-md2cv/internal/assets"
	"github.com/alnah/go-md2cv/internal/frontmatter"
	"github.com/alnah/go-md2cv/internal/layout"
	"github.com/alnah/go-md2cv/internal/measure"
	"github.com/alnah/go-md2cv/internal/pipeline"
	"github.com/alnah/go-md2cv/internal/styles"
)

// Engine runs complete rendering passes: parse, render, style, measure and
// paginate. Create with NewEngine, use Render for each document, and Close
// when done. An Engine is safe for concurrent use.
type Engine struct {
	cfg      engineConfig
	log      *zap.Logger
	loader   assets.AssetLoader
	parser   *frontmatter.Parser
	renderer *pipeline.ContentRenderer
	styles   *styles.Manager
	measurer Measurer
	cache    *measure.Cached
	browser  *browser
	pdf      pdfRenderer

	mu     sync.Mutex
	closed bool
}

// NewEngine creates an Engine. Without options it measures in headless
// Chrome, caches extents for ten minutes and fails on malformed front matter.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg: engineConfig{
			timeout:   defaultTimeout,
			policy:    FrontMatterError,
			placement: CrossRefTrailing,
			engine:    MeasureBrowser,
			cacheTTL:  defaultCacheTTL,
			math:      DefaultMathAssets,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	stack, err := assets.NewStack(e.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	e.loader = stack

	base, err := e.loader.LoadStyle(assets.BaseStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading base style: %w", err)
	}

	e.parser = frontmatter.NewParser(e.cfg.policy)
	e.renderer = pipeline.NewContentRenderer(pipeline.WithCrossRefPlacement(e.cfg.placement))
	e.styles = styles.NewManager(
		styles.WithBaseCSS(base+"\n"+styles.HighlightCSS()),
		styles.WithLogger(e.log),
	)

	if e.measurer == nil || e.pdf == nil {
		e.browser = newBrowser(e.cfg.timeout, e.log)
	}
	if e.measurer == nil {
		m, err := e.builtinMeasurer()
		if err != nil {
			return nil, err
		}
		e.measurer = m
	}
	if e.cfg.cacheTTL > 0 {
		e.cache = measure.NewCached(e.measurer, e.cfg.cacheTTL, e.log)
		e.measurer = e.cache
	}
	if e.pdf == nil {
		e.pdf = &rodPDF{browser: e.browser}
	}
	return e, nil
}

func (e *Engine) builtinMeasurer() (Measurer, error) {
	switch e.cfg.engine {
	case MeasureMetrics:
		m, err := measure.NewMetrics(measure.WithMetricsLogger(e.log))
		if err != nil {
			return nil, fmt.Errorf("loading font metrics: %w", err)
		}
		return m, nil
	case MeasureBrowser, "":
		return newBrowserMeasurer(e.browser, e.cfg.math, e.log), nil
	default:
		return nil, fmt.Errorf("unknown measure engine %q", e.cfg.engine)
	}
}

// Render runs one full pass over in.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Engine) Render(ctx context.Context, in Input) (*Result, error) {
	return e.run(ctx, in, nil)
}

// run executes a pass, reporting each stage it enters to observe.
func (e *Engine) run(ctx context.Context, in Input, observe func(State)) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	enter := func(s State) {
		if observe != nil {
			observe(s)
		}
	}

	if e.isClosed() {
		return nil, ErrEngineClosed
	}
	if strings.TrimSpace(in.Markdown) == "" {
		return nil, ErrEmptyMarkdown
	}

	style := DefaultStyleConfiguration()
	if in.Style != nil {
		style = *in.Style
	}
	if err := style.Validate(); err != nil {
		return nil, err
	}
	geometry, err := style.Geometry()
	if err != nil {
		return nil, err
	}
	if in.Geometry != nil {
		geometry = *in.Geometry
		if err := geometry.Validate(); err != nil {
			return nil, err
		}
	}

	enter(StateParsing)
	parsed, err := e.parser.Parse(in.Markdown)
	if err != nil {
		return nil, err
	}
	if parsed.Fallback {
		e.log.Warn("malformed front matter replaced",
			zap.Stringer("policy", e.parser.Policy()),
			zap.Int("bodyBegin", parsed.BodyBegin))
	}

	enter(StateRendering)
	blocks := e.renderer.Assemble(ctx, parsed.FrontMatter, parsed.Body)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blocks, err = pipeline.ResolveLocalPaths(blocks, in.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving local paths: %w", err)
	}
	sheet := e.styles.Compose(style, in.CSS)

	enter(StateMeasuring)
	surface := measure.Surface{Sheet: sheet, Config: style, Geometry: geometry}
	measured, err := measure.Blocks(ctx, e.measurer, surface, blocks)
	if err != nil {
		return nil, fmt.Errorf("measuring blocks: %w", err)
	}

	pages, err := layout.Paginate(measured, geometry)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res = &Result{
		FrontMatter:         parsed.FrontMatter,
		FrontMatterFallback: parsed.Fallback,
		Style:               style,
		Geometry:            geometry,
		Sheet:               sheet,
		Blocks:              measured,
		Pages:               pages,
	}
	if e.cfg.math != "" && hasMath(measured) {
		res.mathAssets = e.cfg.math
	}
	e.log.Debug("paginated",
		zap.Int("blocks", len(measured)),
		zap.Int("pages", len(pages)),
		zap.Ints("oversize", res.Oversize()))
	return res, nil
}

// LoadTemplate returns the named resume template.
func (e *Engine) LoadTemplate(name string) (*TemplateSet, error) {
	return e.loader.LoadTemplateSet(name)
}

// TemplateNames lists the templates LoadTemplate accepts, custom asset
// directory included.
func (e *Engine) TemplateNames() []string {
	return e.loader.TemplateNames()
}

// TemplateNames lists the built-in template names.
func TemplateNames() []string {
	return assets.TemplateNames()
}

func (e *Engine) previewCSS() string {
	css, err := e.loader.LoadStyle(assets.PreviewStyleName)
	if err != nil {
		e.log.Warn("preview style unavailable", zap.Error(err))
	}
	return css
}

// CachedExtents returns the number of cached block extents.
func (e *Engine) CachedExtents() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close releases resources (headless Chrome browser).
// Returns the combined error of every resource that fails to close.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	var err error
	if e.cache != nil {
		e.cache.Flush()
	}
	if e.pdf != nil {
		err = multierr.Append(err, e.pdf.Close())
	}
	if e.browser != nil {
		err = multierr.Append(err, e.browser.Close())
	}
	return err
}

// IsBrowserError reports whether err comes from the headless browser.
func IsBrowserError(err error) bool {
	return errors.Is(err, ErrBrowserConnect) ||
		errors.Is(err, ErrPageCreate) ||
		errors.Is(err, ErrPageLoad) ||
		errors.Is(err, ErrPDFGeneration)
}
