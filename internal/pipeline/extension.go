package pipeline

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Node kinds added by the resume extension.
var (
	KindMath               = ast.NewNodeKind("Math")
	KindCommand            = ast.NewNodeKind("Command")
	KindIcon               = ast.NewNodeKind("Icon")
	KindPageBreak          = ast.NewNodeKind("PageBreak")
	KindCrossRefList       = ast.NewNodeKind("CrossRefList")
	KindCrossRefDefinition = ast.NewNodeKind("CrossRefDefinition")
	KindCrossRefReference  = ast.NewNodeKind("CrossRefReference")
)

// Math is an inline or display TeX expression.
type Math struct {
	ast.BaseInline
	Display bool
	Value   []byte
}

func (n *Math) Kind() ast.NodeKind { return KindMath }

func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Value)}, nil)
}

// Command is a backslash command such as \LaTeX or \hfill.
type Command struct {
	ast.BaseInline
	Name string
}

func (n *Command) Kind() ast.NodeKind { return KindCommand }

func (n *Command) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

// Icon is a :name: shortcode.
type Icon struct {
	ast.BaseInline
	Name  string
	Glyph string
}

func (n *Icon) Kind() ast.NodeKind { return KindIcon }

func (n *Icon) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

// PageBreak is a top-level block that forces a new page.
type PageBreak struct {
	ast.BaseBlock
}

func (n *PageBreak) Kind() ast.NodeKind { return KindPageBreak }

func (n *PageBreak) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// CrossRefList groups numbered citation definitions.
type CrossRefList struct {
	ast.BaseBlock
	Start int
}

func (n *CrossRefList) Kind() ast.NodeKind { return KindCrossRefList }

func (n *CrossRefList) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// CrossRefDefinition is one "[~label]: text" citation.
type CrossRefDefinition struct {
	ast.BaseBlock
	Label string
	Index int

	refs *crossRefIndex
}

func (n *CrossRefDefinition) Kind() ast.NodeKind { return KindCrossRefDefinition }

func (n *CrossRefDefinition) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": n.Label}, nil)
}

// CrossRefReference is an inline "[~label]" citation.
type CrossRefReference struct {
	ast.BaseInline
	Label   string
	Index   int
	Ordinal int
}

func (n *CrossRefReference) Kind() ast.NodeKind { return KindCrossRefReference }

func (n *CrossRefReference) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": n.Label}, nil)
}

// CrossRefPlacement controls where citation definitions are rendered.
type CrossRefPlacement int

const (
	// CrossRefTrailing collects all definitions into one list at the end.
	CrossRefTrailing CrossRefPlacement = iota
	// CrossRefInPlace keeps each run of definitions where it was written.
	CrossRefInPlace
)

// resumeExtension adds math, commands, icons, page breaks, citations and
// definition list repair to Goldmark.
type resumeExtension struct {
	placement CrossRefPlacement
}

func (e *resumeExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(&crossRefDefinitionParser{}, 150),
		),
		parser.WithInlineParsers(
			util.Prioritized(&mathParser{}, 150),
			util.Prioritized(&commandParser{}, 150),
			util.Prioritized(&iconParser{}, 150),
			util.Prioritized(&crossRefReferenceParser{}, 150),
		),
		parser.WithASTTransformers(
			util.Prioritized(&pageBreakTransformer{}, 100),
			util.Prioritized(&definitionListSplitter{}, 110),
			util.Prioritized(&crossRefTransformer{placement: e.placement}, 120),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&resumeHTMLRenderer{}, 100),
		),
	)
}
