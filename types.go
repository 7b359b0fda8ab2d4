package md2cv

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2cv/internal/assets"
	"github.com/alnah/go-md2cv/internal/frontmatter"
	"github.com/alnah/go-md2cv/internal/layout"
	"github.com/alnah/go-md2cv/internal/measure"
	"github.com/alnah/go-md2cv/internal/pipeline"
	"github.com/alnah/go-md2cv/internal/styles"
)

// Types shared with the internal packages.
type (
	// StyleConfiguration is the user-facing style of a resume.
	StyleConfiguration = styles.Config
	// Font names a typeface and its CSS font-family stack.
	Font = styles.Font
	// Sheet is the three-layer style sheet of one rendering context.
	Sheet = styles.Sheet

	// FrontMatter is the structured metadata of a resume.
	FrontMatter = frontmatter.FrontMatter
	// HeaderItem is one contact entry shown under the name.
	HeaderItem = frontmatter.HeaderItem

	// Block is an atomic unit of rendered content.
	Block = layout.Block
	// BlockKind identifies the structural kind of a block.
	BlockKind = layout.BlockKind
	// Page is one fixed-size page of blocks.
	Page = layout.Page
	// Geometry holds page dimensions and margins in CSS pixels.
	Geometry = layout.Geometry

	// Measurer returns the occupied heights of blocks on a surface.
	Measurer = measure.Measurer
	// Surface is what a measurer lays blocks out against.
	Surface = measure.Surface
	// Extent is the measured height of one block.
	Extent = measure.Extent

	// TemplateSet is a starter resume and its style layer.
	TemplateSet = assets.TemplateSet
)

// DefaultTemplateName names the starter resume every engine can load.
const DefaultTemplateName = assets.DefaultTemplateSetName

// DefaultStyleConfiguration returns the style used when none is given.
func DefaultStyleConfiguration() StyleConfiguration {
	return styles.DefaultConfig()
}

// FrontMatterPolicy selects the outcome of a malformed metadata block.
type FrontMatterPolicy = frontmatter.Policy

// Front matter policies.
const (
	FrontMatterError = frontmatter.PolicyError
	FrontMatterLast  = frontmatter.PolicyLast
	FrontMatterEmpty = frontmatter.PolicyEmpty
)

// ParseFrontMatterPolicy maps "error", "last" or "empty" to a policy.
func ParseFrontMatterPolicy(s string) (FrontMatterPolicy, error) {
	return frontmatter.ParsePolicy(s)
}

// CrossRefPlacement controls where citation definitions are rendered.
type CrossRefPlacement = pipeline.CrossRefPlacement

// Cross-reference placements.
const (
	CrossRefTrailing = pipeline.CrossRefTrailing
	CrossRefInPlace  = pipeline.CrossRefInPlace
)

// ParseCrossRefPlacement maps "trailing" or "inplace" to a placement.
// The empty string selects trailing.
func ParseCrossRefPlacement(s string) (CrossRefPlacement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "trailing":
		return CrossRefTrailing, nil
	case "inplace", "in-place":
		return CrossRefInPlace, nil
	}
	return CrossRefTrailing, fmt.Errorf("unknown cross-reference placement %q (want trailing or inplace)", s)
}

// MeasureEngine selects how block heights are measured.
type MeasureEngine string

// Measurement engines.
const (
	// MeasureBrowser lays blocks out in headless Chrome.
	MeasureBrowser MeasureEngine = "browser"
	// MeasureMetrics estimates heights from font metrics without a browser.
	MeasureMetrics MeasureEngine = "metrics"
)

// ParseMeasureEngine maps "browser" or "metrics" to an engine.
// The empty string selects the browser.
func ParseMeasureEngine(s string) (MeasureEngine, error) {
	switch MeasureEngine(strings.ToLower(strings.TrimSpace(s))) {
	case "", MeasureBrowser:
		return MeasureBrowser, nil
	case MeasureMetrics:
		return MeasureMetrics, nil
	}
	return "", fmt.Errorf("unknown measure engine %q (want browser or metrics)", s)
}

// Input is one document to render.
type Input struct {
	// Markdown is the raw document, optionally opened by a front matter block.
	Markdown string

	// Style is the style configuration. Nil means DefaultStyleConfiguration.
	Style *StyleConfiguration

	// CSS is the custom style layer, applied last.
	CSS string

	// Geometry replaces the page geometry derived from Style. Nil derives it.
	Geometry *Geometry

	// SourceDir resolves relative image and link paths. Empty leaves them as written.
	SourceDir string
}

// Result is the outcome of one complete pass.
type Result struct {
	FrontMatter FrontMatter `json:"frontMatter"`

	// FrontMatterFallback is set when a malformed block was replaced by policy.
	FrontMatterFallback bool `json:"frontMatterFallback,omitempty"`

	Style    StyleConfiguration `json:"style"`
	Geometry Geometry           `json:"geometry"`
	Sheet    Sheet              `json:"-"`

	// Blocks are the measured blocks in document order.
	Blocks []Block `json:"-"`
	Pages  []Page  `json:"pages"`

	// mathAssets is the KaTeX base URL the serializers load, empty when the
	// document holds no math or typesetting is off.
	mathAssets string
}

// PageCount returns the number of pages.
func (r *Result) PageCount() int {
	if r == nil {
		return 0
	}
	return len(r.Pages)
}

// Oversize reports the indexes of pages holding a block taller than a page.
func (r *Result) Oversize() []int {
	if r == nil {
		return nil
	}
	var out []int
	for _, p := range r.Pages {
		if p.Oversize {
			out = append(out, p.Index)
		}
	}
	return out
}

// Title returns the resume name, or fallback when the front matter has none.
func (r *Result) Title(fallback string) string {
	if r == nil || strings.TrimSpace(r.FrontMatter.Name) == "" {
		return fallback
	}
	return strings.TrimSpace(r.FrontMatter.Name)
}
