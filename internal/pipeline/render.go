package pipeline

import (
	"context"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-md2cv/internal/frontmatter"
	"github.com/alnah/go-md2cv/internal/layout"
)

// ContentRenderer turns resume markdown into sanitized, typed blocks.
// It is safe for concurrent use.
type ContentRenderer struct {
	conv *GoldmarkConverter
}

// NewContentRenderer creates a renderer. Options configure the converter.
func NewContentRenderer(opts ...ConverterOption) *ContentRenderer {
	return &ContentRenderer{conv: NewGoldmarkConverter(opts...)}
}

// Render returns the sanitized markup of body.
func (r *ContentRenderer) Render(ctx context.Context, body string) string {
	return joinMarkup(r.Blocks(ctx, body))
}

// Blocks renders each top-level node of body into one block, in order.
// Blocks that sanitize to nothing are dropped.
func (r *ContentRenderer) Blocks(ctx context.Context, body string) []layout.Block {
	doc, src := r.conv.Parse(ctx, body)

	var blocks []layout.Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if ctx.Err() != nil {
			return blocks
		}
		kind := blockKind(n)
		if kind == layout.KindPageBreak {
			blocks = append(blocks, layout.Block{Kind: kind, Markup: PageBreakMarkup})
			continue
		}
		markup := singleElement(Sanitize(r.conv.RenderNode(src, n)))
		if markup == "" {
			continue
		}
		blocks = append(blocks, layout.Block{Kind: kind, Markup: markup})
	}
	return blocks
}

// RenderResume parses raw, then renders the header followed by the body.
// The header block, when present, is always block 0.
func (r *ContentRenderer) RenderResume(ctx context.Context, p *frontmatter.Parser, raw string) (frontmatter.Result, []layout.Block, error) {
	res, err := p.Parse(raw)
	if err != nil {
		return frontmatter.Result{}, nil, err
	}
	return res, r.Assemble(ctx, res.FrontMatter, res.Body), nil
}

// Assemble renders the header block, when fm has one, followed by the
// blocks of body.
func (r *ContentRenderer) Assemble(ctx context.Context, fm frontmatter.FrontMatter, body string) []layout.Block {
	var blocks []layout.Block
	if header := r.RenderHeader(ctx, fm); header != "" {
		blocks = append(blocks, layout.Block{Kind: layout.KindHeader, Markup: header})
	}
	return append(blocks, r.Blocks(ctx, body)...)
}

func blockKind(n ast.Node) layout.BlockKind {
	switch n.Kind() {
	case ast.KindHeading:
		return layout.KindHeading
	case ast.KindParagraph, ast.KindTextBlock:
		return layout.KindParagraph
	case ast.KindList, extast.KindFootnoteList, KindCrossRefList:
		return layout.KindList
	case extast.KindDefinitionList:
		return layout.KindDefinitionList
	case KindPageBreak:
		return layout.KindPageBreak
	default:
		return layout.KindRaw
	}
}

func joinMarkup(blocks []layout.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(blk.Markup)
	}
	return b.String()
}

var fragmentContext = &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}

// singleElement trims markup and wraps it in a div unless it already is
// exactly one element. Whitespace-only markup yields "".
func singleElement(markup string) string {
	markup = strings.TrimSpace(markup)
	if markup == "" {
		return ""
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), fragmentContext)
	if err != nil {
		return "<div>" + markup + "</div>"
	}

	elements := 0
	for _, n := range nodes {
		switch n.Type {
		case html.ElementNode:
			elements++
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return "<div>" + markup + "</div>"
			}
		case html.CommentNode:
		default:
			return "<div>" + markup + "</div>"
		}
	}
	switch elements {
	case 0:
		return ""
	case 1:
		return markup
	default:
		return "<div>" + markup + "</div>"
	}
}
