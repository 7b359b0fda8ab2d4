package pipeline

import (
	"strconv"

	"github.com/gosimple/slug"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Logos rendered for the TeX family of commands.
const (
	latexLogo = `<span class="latex">L<sup>a</sup>T<sub>e</sub>X</span>`
	texLogo   = `<span class="tex">T<sub>e</sub>X</span>`
)

// PageBreakMarkup is the zero-height element emitted for \newpage.
const PageBreakMarkup = `<div class="md-it-newpage"></div>`

// resumeHTMLRenderer renders the nodes added by resumeExtension.
type resumeHTMLRenderer struct{}

func (r *resumeHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, r.renderMath)
	reg.Register(KindCommand, r.renderCommand)
	reg.Register(KindIcon, r.renderIcon)
	reg.Register(KindPageBreak, r.renderPageBreak)
	reg.Register(KindCrossRefList, r.renderCrossRefList)
	reg.Register(KindCrossRefDefinition, r.renderCrossRefDefinition)
	reg.Register(KindCrossRefReference, r.renderCrossRefReference)
}

func (r *resumeHTMLRenderer) renderMath(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Math)
	switch string(n.Value) {
	case `\LaTeX`:
		_, _ = w.WriteString(latexLogo)
		return ast.WalkSkipChildren, nil
	case `\TeX`:
		_, _ = w.WriteString(texLogo)
		return ast.WalkSkipChildren, nil
	}

	class := "math inline"
	if n.Display {
		class = "math display"
	}
	_, _ = w.WriteString(`<span class="` + class + `">`)
	_, _ = w.Write(util.EscapeHTML(n.Value))
	_, _ = w.WriteString(`</span>`)
	return ast.WalkSkipChildren, nil
}

func (r *resumeHTMLRenderer) renderCommand(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	switch node.(*Command).Name {
	case "LaTeX":
		_, _ = w.WriteString(latexLogo)
	case "TeX":
		_, _ = w.WriteString(texLogo)
	case "hfill":
		_, _ = w.WriteString(`<span class="hfill"></span>`)
	case "newpage":
		_, _ = w.WriteString(`<span class="md-it-newpage"></span>`)
	}
	return ast.WalkSkipChildren, nil
}

func (r *resumeHTMLRenderer) renderIcon(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Icon)
	_, _ = w.WriteString(`<span class="icon" data-icon="` + n.Name + `">` + n.Glyph + `</span>`)
	return ast.WalkSkipChildren, nil
}

func (r *resumeHTMLRenderer) renderPageBreak(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(PageBreakMarkup + "\n")
	}
	return ast.WalkContinue, nil
}

func (r *resumeHTMLRenderer) renderCrossRefList(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</ol>\n")
		return ast.WalkContinue, nil
	}
	n := node.(*CrossRefList)
	_, _ = w.WriteString(`<ol data-scope="cross-ref" data-part="definitions"`)
	if n.Start > 1 {
		_, _ = w.WriteString(` start="` + strconv.Itoa(n.Start) + `"`)
	}
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func (r *resumeHTMLRenderer) renderCrossRefDefinition(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*CrossRefDefinition)
	id := crossRefID(n.Label)
	if entering {
		_, _ = w.WriteString(`<li data-scope="cross-ref" data-part="definition" data-label="[` +
			strconv.Itoa(n.Index) + `]" id="` + id + `">` + "\n")
		return ast.WalkContinue, nil
	}

	count := 0
	if n.refs != nil {
		count = n.refs.refs[n.Label]
	}
	for k := 1; k <= count; k++ {
		_, _ = w.WriteString(`<a data-scope="cross-ref" data-part="backlink" href="#` +
			id + `-ref-` + strconv.Itoa(k) + `">↩︎</a>`)
	}
	_, _ = w.WriteString("</li>\n")
	return ast.WalkContinue, nil
}

func (r *resumeHTMLRenderer) renderCrossRefReference(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*CrossRefReference)
	id := crossRefID(n.Label)
	_, _ = w.WriteString(`<a data-scope="cross-ref" data-part="reference" href="#` + id +
		`" id="` + id + `-ref-` + strconv.Itoa(n.Ordinal) + `">[` + strconv.Itoa(n.Index) + `]</a>`)
	return ast.WalkSkipChildren, nil
}

func crossRefID(label string) string {
	return "cross-ref-" + slug.Make(label)
}
