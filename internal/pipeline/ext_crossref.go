package pipeline

import (
	"regexp"
	"sort"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var definitionPattern = regexp.MustCompile(`^\[~([A-Za-z0-9_.:-]+)\]:`)

var crossRefKey = parser.NewContextKey()

// crossRefIndex records defined labels and counts references. The numbers it
// holds are provisional until crossRefTransformer renumbers the document.
type crossRefIndex struct {
	order map[string]int
	refs  map[string]int
}

func crossRefs(pc parser.Context) *crossRefIndex {
	if v := pc.Get(crossRefKey); v != nil {
		return v.(*crossRefIndex)
	}
	idx := &crossRefIndex{order: map[string]int{}, refs: map[string]int{}}
	pc.Set(crossRefKey, idx)
	return idx
}

// crossRefDefinitionParser parses "[~label]: text" blocks. Continuation
// lines are indented by four spaces, like footnote definitions.
type crossRefDefinitionParser struct{}

func (b *crossRefDefinitionParser) Trigger() []byte { return []byte{'['} }

func (b *crossRefDefinitionParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) || line[pos] != '[' {
		return nil, parser.NoChildren
	}
	m := definitionPattern.FindSubmatchIndex(line[pos:])
	if m == nil {
		return nil, parser.NoChildren
	}

	node := &CrossRefDefinition{Label: string(line[pos+m[2] : pos+m[3]])}
	padding := segment.Padding
	next := pos + m[1] - padding
	if pos+m[1] >= len(line) || util.IsBlank(line[pos+m[1]:]) {
		reader.Advance(next)
		return node, parser.NoChildren
	}
	reader.AdvanceAndSetPadding(next, padding)
	return node, parser.HasChildren
}

func (b *crossRefDefinitionParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, _ := reader.PeekLine()
	if util.IsBlank(line) {
		return parser.Continue | parser.HasChildren
	}
	childpos, padding := util.IndentPosition(line, reader.LineOffset(), 4)
	if childpos < 0 {
		return parser.Close
	}
	reader.AdvanceAndSetPadding(childpos, padding)
	return parser.Continue | parser.HasChildren
}

func (b *crossRefDefinitionParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	def := node.(*CrossRefDefinition)
	idx := crossRefs(pc)
	if n, ok := idx.order[def.Label]; ok {
		def.Index = n
	} else {
		def.Index = len(idx.order) + 1
		idx.order[def.Label] = def.Index
	}
	def.refs = idx
}

func (b *crossRefDefinitionParser) CanInterruptParagraph() bool { return true }

func (b *crossRefDefinitionParser) CanAcceptIndentedLine() bool { return false }

// crossRefTransformer wraps definitions into numbered lists.
type crossRefTransformer struct {
	placement CrossRefPlacement
}

func (t *crossRefTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var defs []*CrossRefDefinition
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if d, ok := n.(*CrossRefDefinition); ok {
			defs = append(defs, d)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if len(defs) == 0 {
		return
	}
	renumber(doc, defs)

	if t.placement == CrossRefTrailing {
		sort.SliceStable(defs, func(i, j int) bool { return defs[i].Index < defs[j].Index })
		list := &CrossRefList{Start: defs[0].Index}
		for _, d := range defs {
			d.Parent().RemoveChild(d.Parent(), d)
			list.AppendChild(list, d)
		}
		doc.AppendChild(doc, list)
		return
	}

	// In place: each run of adjacent sibling definitions becomes one list.
	for i := 0; i < len(defs); {
		first := defs[i]
		parent := first.Parent()
		list := &CrossRefList{Start: first.Index}
		parent.InsertBefore(parent, first, list)
		j := i
		for j < len(defs) && (j == i || defs[j-1].NextSibling() == defs[j]) {
			j++
		}
		for _, d := range defs[i:j] {
			parent.RemoveChild(parent, d)
			list.AppendChild(list, d)
		}
		i = j
	}
}

// renumber numbers citations by first reference. Definitions nothing refers
// to follow in document order.
func renumber(doc *ast.Document, defs []*CrossRefDefinition) {
	numbers := map[string]int{}
	assign := func(label string) int {
		n, ok := numbers[label]
		if !ok {
			n = len(numbers) + 1
			numbers[label] = n
		}
		return n
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if ref, ok := n.(*CrossRefReference); ok && entering {
			ref.Index = assign(ref.Label)
		}
		return ast.WalkContinue, nil
	})
	for _, d := range defs {
		d.Index = assign(d.Label)
	}
}
