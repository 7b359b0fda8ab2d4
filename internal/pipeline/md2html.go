package pipeline

import (
	"bytes"
	"context"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// HighlightStyle is the chroma style whose CSS ships in the base layer.
const HighlightStyle = "github"

// GoldmarkConverter parses resume markdown into a Goldmark AST and renders
// individual nodes back to HTML.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// ConverterOption configures a GoldmarkConverter.
type ConverterOption func(*converterConfig)

type converterConfig struct {
	placement CrossRefPlacement
}

// WithCrossRefPlacement selects where citation definitions are rendered.
func WithCrossRefPlacement(p CrossRefPlacement) ConverterOption {
	return func(c *converterConfig) {
		c.placement = p
	}
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM, definition
// lists, footnotes, math, citations, commands and syntax highlighting.
func NewGoldmarkConverter(opts ...ConverterOption) *GoldmarkConverter {
	cfg := converterConfig{placement: CrossRefTrailing}
	for _, opt := range opts {
		opt(&cfg)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, linkify, task lists
			extension.DefinitionList,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(HighlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
			&resumeExtension{placement: cfg.placement},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			// Raw HTML is kept so header spans and <u> survive; every
			// fragment goes through the sanitizer afterwards.
			html.WithUnsafe(),
		),
	)
	return &GoldmarkConverter{md: md}
}

// Parse preprocesses content and returns its AST with the source it indexes.
func (c *GoldmarkConverter) Parse(ctx context.Context, content string) (ast.Node, []byte) {
	src := []byte(preprocess(ctx, content))
	doc := c.md.Parser().Parse(text.NewReader(src))
	return doc, src
}

// RenderNode renders one node and its descendants to HTML.
func (c *GoldmarkConverter) RenderNode(src []byte, n ast.Node) string {
	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, src, n); err != nil {
		return ""
	}
	return restoreMarks(buf.String())
}

// ToFragment converts content to an unsanitized HTML fragment.
func (c *GoldmarkConverter) ToFragment(ctx context.Context, content string) string {
	doc, src := c.Parse(ctx, content)
	return c.RenderNode(src, doc)
}
