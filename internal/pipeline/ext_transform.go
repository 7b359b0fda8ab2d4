package pipeline

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// pageBreakTransformer replaces top-level paragraphs holding only \newpage
// with a PageBreak block.
type pageBreakTransformer struct{}

func (t *pageBreakTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	src := reader.Source()
	for n := doc.FirstChild(); n != nil; {
		next := n.NextSibling()
		if p, ok := n.(*ast.Paragraph); ok && onlyNewPage(p, src) {
			doc.ReplaceChild(doc, p, &PageBreak{})
		}
		n = next
	}
}

func onlyNewPage(p *ast.Paragraph, src []byte) bool {
	found := false
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *Command:
			if v.Name != "newpage" || found {
				return false
			}
			found = true
		case *ast.Text:
			if !util.IsBlank(v.Segment.Value(src)) {
				return false
			}
		default:
			return false
		}
	}
	return found
}

// definitionListSplitter separates definition groups that the parser joined
// into one list: a term following a description starts a new sibling list.
type definitionListSplitter struct{}

func (t *definitionListSplitter) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var lists []*extast.DefinitionList
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if dl, ok := n.(*extast.DefinitionList); ok && entering {
			lists = append(lists, dl)
		}
		return ast.WalkContinue, nil
	})

	for _, dl := range lists {
		for cur := dl; cur != nil; {
			cur = splitDefinitionList(cur)
		}
	}
}

// splitDefinitionList moves everything from the second group on into a new
// list inserted after dl. It returns the new list, or nil when dl holds a
// single group.
func splitDefinitionList(dl *extast.DefinitionList) *extast.DefinitionList {
	var cut ast.Node
	sawDescription := false
	for c := dl.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.Kind() {
		case extast.KindDefinitionDescription:
			sawDescription = true
		case extast.KindDefinitionTerm:
			if sawDescription {
				cut = c
			}
		}
		if cut != nil {
			break
		}
	}
	if cut == nil {
		return nil
	}

	rest := extast.NewDefinitionList(dl.Offset, nil)
	for c := cut; c != nil; {
		next := c.NextSibling()
		dl.RemoveChild(dl, c)
		rest.AppendChild(rest, c)
		c = next
	}
	parent := dl.Parent()
	parent.InsertAfter(parent, dl, rest)
	return rest
}
