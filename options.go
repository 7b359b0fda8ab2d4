package md2cv

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an Engine.
type Option func(*Engine)

// engineConfig holds internal configuration for Engine.
type engineConfig struct {
	timeout   time.Duration
	policy    FrontMatterPolicy
	placement CrossRefPlacement
	engine    MeasureEngine
	cacheTTL  time.Duration
	assetPath string
	math      string
}

// Engine defaults.
const (
	defaultTimeout  = 30 * time.Second
	defaultCacheTTL = 10 * time.Minute
)

// WithTimeout bounds browser operations that carry no context deadline.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2cv: WithTimeout duration must be positive")
	}
	return func(e *Engine) {
		e.cfg.timeout = d
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithFrontMatterPolicy selects what happens to a malformed front matter block.
func WithFrontMatterPolicy(p FrontMatterPolicy) Option {
	return func(e *Engine) {
		e.cfg.policy = p
	}
}

// WithCrossRefPlacement selects where citation definitions are rendered.
func WithCrossRefPlacement(p CrossRefPlacement) Option {
	return func(e *Engine) {
		e.cfg.placement = p
	}
}

// WithMeasureEngine selects the built-in measurer.
func WithMeasureEngine(m MeasureEngine) Option {
	return func(e *Engine) {
		e.cfg.engine = m
	}
}

// WithMeasurer replaces the built-in measurer. The engine still caches its results
// unless caching is disabled with WithCacheTTL.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) {
		e.measurer = m
	}
}

// WithCacheTTL sets how long measured extents are reused. Zero or less disables the cache.
func WithCacheTTL(d time.Duration) Option {
	return func(e *Engine) {
		e.cfg.cacheTTL = d
	}
}

// WithAssetPath loads the base style and templates from dir, falling back
// to the embedded assets for anything dir does not provide.
func WithAssetPath(dir string) Option {
	return func(e *Engine) {
		e.cfg.assetPath = dir
	}
}

// WithMathAssets sets the base URL KaTeX is loaded from to typeset math in
// the browser surfaces. Empty turns typesetting off and leaves the TeX
// source visible.
func WithMathAssets(base string) Option {
	return func(e *Engine) {
		e.cfg.math = base
	}
}

// withPDFRenderer injects the PDF backend (tests).
func withPDFRenderer(r pdfRenderer) Option {
	return func(e *Engine) {
		e.pdf = r
	}
}
