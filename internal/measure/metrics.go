package measure

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // image.DecodeConfig formats
	_ "image/jpeg" // image.DecodeConfig formats
	_ "image/png"  // image.DecodeConfig formats
	"math"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp" // image.DecodeConfig formats
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp" // image.DecodeConfig formats
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/width"

	"github.com/alnah/go-md2cv/internal/layout"
	"github.com/alnah/go-md2cv/internal/styles"
)

// referenceSize is the pixel size faces are loaded at; advances scale linearly.
const referenceSize = 100

type faceKind int

const (
	faceRegular faceKind = iota
	faceBold
	faceMono
)

// Metrics estimates block heights from Go font metrics and the style
// configuration. It never needs a browser, so it is deterministic and always
// available. Custom CSS is not interpreted.
type Metrics struct {
	faces [3]font.Face
	mu    sync.Mutex // font.Face is not safe for concurrent use
	log   *zap.Logger
}

// MetricsOption configures a Metrics measurer.
type MetricsOption func(*Metrics)

// WithMetricsLogger sets the logger.
func WithMetricsLogger(log *zap.Logger) MetricsOption {
	return func(m *Metrics) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMetrics loads the Go fonts and returns a Metrics measurer.
func NewMetrics(opts ...MetricsOption) (*Metrics, error) {
	m := &Metrics{log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.Named("metrics")

	for kind, ttf := range map[faceKind][]byte{
		faceRegular: goregular.TTF,
		faceBold:    gobold.TTF,
		faceMono:    gomono.TTF,
	} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: referenceSize, DPI: 72, Hinting: font.HintingNone})
		if err != nil {
			return nil, fmt.Errorf("creating font face: %w", err)
		}
		m.faces[kind] = face
	}
	return m, nil
}

// Measure implements Measurer.
func (m *Metrics) Measure(ctx context.Context, s Surface, blocks []layout.Block) ([]Extent, error) {
	if err := s.Geometry.Validate(); err != nil {
		return nil, err
	}
	s.Config = withDefaults(s.Config)

	m.mu.Lock()
	defer m.mu.Unlock()

	extents := make([]Extent, len(blocks))
	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if b.ForcedBreak() {
			continue
		}
		extents[i] = m.measureBlock(s, b.Markup)
	}
	return extents, nil
}

func (m *Metrics) measureBlock(s Surface, markup string) Extent {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	if err != nil {
		m.log.Debug("unparseable block", zap.Error(err))
		return Extent{}
	}

	lc := &layoutContext{m: m, cfg: s}
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	b := lc.stack(root, s.Geometry.ContentWidth(), lc.baseStyle())
	flow := b.top + b.content + b.bottom
	return Extent{Flow: round2(flow), Leading: round2(flow - b.top)}
}

// withDefaults fills the fields the estimate cannot work without.
func withDefaults(cfg styles.Config) styles.Config {
	def := styles.DefaultConfig()
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = def.LineHeight
	}
	return cfg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// box is a measured vertical extent split into margins and content.
type box struct {
	top, content, bottom float64
}

type textStyle struct {
	face       faceKind
	size       float64 // px
	lineHeight float64 // multiplier
	pre        bool
}

type layoutContext struct {
	m   *Metrics
	cfg Surface
}

func (lc *layoutContext) baseStyle() textStyle {
	return textStyle{face: faceRegular, size: lc.cfg.Config.FontSize, lineHeight: lc.cfg.Config.LineHeight}
}

// elementBox measures a block-level element.
func (lc *layoutContext) elementBox(n *html.Node, avail float64, st textStyle) box {
	par := lc.cfg.Config.ParagraphSpace
	var b box

	switch n.DataAtom {
	case atom.H1:
		st.face, st.size = faceBold, st.size*1.2
		if hasClass(n.Parent, "resume-header") {
			st.lineHeight = 1
		}
		b.bottom = 8
	case atom.H2, atom.H3:
		st.face, st.size = faceBold, st.size*1.2
		b.top, b.bottom = 20, par
	case atom.H4, atom.H5, atom.H6:
		st.face = faceBold
		b.top, b.bottom = 20, par
	case atom.P, atom.Li:
		b.bottom = par
	case atom.Dl:
		b.bottom = 10
	case atom.Ul, atom.Ol:
		b.top, b.bottom = 0.2*st.size, 0.2*st.size
	case atom.Pre:
		st.face, st.pre = faceMono, true
		b.bottom = par
	case atom.Blockquote:
		b.top, b.bottom = st.size, st.size
	case atom.Hr:
		b.top, b.bottom = 8, 8
		b.content = 1
		return b
	}
	if hasClass(n, "md-it-newpage") {
		return box{}
	}
	if hasClass(n, "resume-header") {
		b.bottom = 1
	}

	inner := avail - indent(n, st)
	switch {
	case n.DataAtom == atom.Dl || n.DataAtom == atom.Tr:
		b.content = lc.row(n, inner, st)
	default:
		c := lc.stack(n, inner, st)
		b.content = c.top + c.content + c.bottom
	}

	if n.DataAtom == atom.H2 {
		b.content += 5 + 1 // padding-bottom and border
	}
	return b
}

// stack lays block children out vertically and inline runs as wrapped lines.
func (lc *layoutContext) stack(n *html.Node, avail float64, st textStyle) box {
	var (
		total      box
		first      = true
		prevBottom float64
		run        []unit
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		h := lc.height(run, avail, st.size*st.lineHeight)
		run = run[:0]
		if h == 0 {
			return
		}
		lc.place(&total, box{content: h}, &first, &prevBottom)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			flush()
			lc.place(&total, lc.elementBox(c, avail, st), &first, &prevBottom)
			continue
		}
		run = lc.inline(c, st, avail, run)
	}
	flush()
	total.bottom = prevBottom
	return total
}

// place appends child to total, collapsing adjacent sibling margins.
func (lc *layoutContext) place(total *box, child box, first *bool, prevBottom *float64) {
	if *first {
		total.top = child.top
		total.content = child.content
		*first = false
	} else {
		total.content += math.Max(*prevBottom, child.top) + child.content
	}
	*prevBottom = child.bottom
}

// row lays children side by side in equal columns (flex rows, table rows).
func (lc *layoutContext) row(n *html.Node, avail float64, st textStyle) float64 {
	var cells []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			cells = append(cells, c)
		}
	}
	if len(cells) == 0 {
		return 0
	}
	colWidth := avail / float64(len(cells))
	var tallest float64
	for _, c := range cells {
		cs := st
		if c.DataAtom == atom.Th || c.DataAtom == atom.Dt {
			cs.face = faceBold
		}
		b := lc.stack(c, colWidth, cs)
		tallest = math.Max(tallest, b.top+b.content+b.bottom)
	}
	return tallest
}

// imageSize returns the rendered size of an img element. Embedded images
// keep their aspect ratio and shrink to the available width.
func (lc *layoutContext) imageSize(n *html.Node, avail float64) (w, h float64) {
	src := attr(n, "src")
	const marker = ";base64,"
	if i := strings.Index(src, marker); strings.HasPrefix(src, "data:") && i > 0 {
		data, err := base64.StdEncoding.DecodeString(src[i+len(marker):])
		if err == nil {
			if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil && cfg.Width > 0 {
				w, h = float64(cfg.Width), float64(cfg.Height)
			}
		}
	}
	if attrH, err := strconv.ParseFloat(attr(n, "height"), 64); err == nil && attrH > 0 {
		if h > 0 {
			w = w * attrH / h
		} else {
			w = attrH
		}
		h = attrH
	}
	if h == 0 {
		return lc.cfg.Config.FontSize, lc.cfg.Config.FontSize * lc.cfg.Config.LineHeight
	}
	if w > avail && w > 0 {
		h = h * avail / w
		w = avail
	}
	return w, h
}

// unit is an unbreakable piece of inline content.
type unit struct {
	width  float64
	height float64 // replaced content taller than the line
	space  bool // collapsible space before the next word
	brk    bool // forced line break
	breaks bool // a line may break after this unit without a space
}

// inline appends the units of n to run.
func (lc *layoutContext) inline(n *html.Node, st textStyle, avail float64, run []unit) []unit {
	switch n.Type {
	case html.TextNode:
		return lc.textUnits(n.Data, st, run)
	case html.ElementNode:
	default:
		return run
	}

	switch n.DataAtom {
	case atom.Br:
		return append(run, unit{brk: true})
	case atom.Strong, atom.B, atom.Th, atom.Dt:
		if st.face != faceMono {
			st.face = faceBold
		}
	case atom.Code, atom.Kbd, atom.Samp:
		st.face = faceMono
	case atom.Sub, atom.Sup, atom.Small:
		st.size *= 0.85
	case atom.Img:
		w, h := lc.imageSize(n, avail)
		return append(run, unit{width: w, height: h, breaks: true})
	case atom.Script, atom.Style, atom.Template:
		return run
	}
	if hasClass(n, "hfill") {
		return run
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		run = lc.inline(c, st, avail, run)
	}
	return run
}

func (lc *layoutContext) textUnits(text string, st textStyle, run []unit) []unit {
	if st.pre {
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				run = append(run, unit{brk: true})
			}
			run = lc.wordUnits(line, st, run)
		}
		return run
	}
	for i, word := range strings.Fields(text) {
		if (i > 0 || startsWithSpace(text)) && len(run) > 0 {
			run[len(run)-1].space = true
		}
		run = lc.wordUnits(word, st, run)
	}
	if endsWithSpace(text) && len(run) > 0 {
		run[len(run)-1].space = true
	}
	return run
}

// wordUnits splits a word into units. Wide East Asian runes each form a unit
// a line may break after; other runes accumulate into one unit.
func (lc *layoutContext) wordUnits(word string, st textStyle, run []unit) []unit {
	var cur float64
	for _, r := range word {
		if isWide(r) {
			if cur > 0 {
				run = append(run, unit{width: cur, breaks: true})
				cur = 0
			}
			run = append(run, unit{width: st.size, breaks: true})
			continue
		}
		cur += lc.advance(r, st)
	}
	if cur > 0 {
		run = append(run, unit{width: cur})
	}
	return run
}

func (lc *layoutContext) advance(r rune, st textStyle) float64 {
	adv, ok := lc.m.faces[st.face].GlyphAdvance(r)
	if !ok {
		return st.size
	}
	return fixedToFloat(adv) * st.size / referenceSize
}

func (lc *layoutContext) spaceWidth(st textStyle) float64 {
	return lc.advance(' ', st)
}

// height wraps run greedily over avail and sums the line heights. A line is
// linePx tall unless replaced content in it is taller.
func (lc *layoutContext) height(run []unit, avail, linePx float64) float64 {
	if avail <= 0 {
		avail = 1
	}
	space := lc.spaceWidth(lc.baseStyle())
	var (
		total, x, tallest float64
		open              bool
	)
	newLine := func() {
		if open {
			total += tallest
		}
		open, x, tallest = true, 0, linePx
	}

	pendingSpace, prevBreaks := false, true
	for _, u := range run {
		if u.brk {
			if !open {
				newLine()
			}
			newLine()
			pendingSpace, prevBreaks = false, true
			continue
		}
		if !open {
			newLine()
		}
		gap := 0.0
		if pendingSpace && x > 0 {
			gap = space
		}
		glued := !pendingSpace && !prevBreaks && !u.breaks
		if x > 0 && !glued && x+gap+u.width > avail {
			newLine()
			gap = 0
		}
		x += gap + u.width
		for x > avail && u.width > avail {
			// word wider than the line wraps mid-word
			newLine()
			x = u.width - avail
			u.width -= avail
		}
		tallest = math.Max(tallest, u.height)
		pendingSpace, prevBreaks = u.space, u.breaks
	}
	if open {
		total += tallest
	}
	return total
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Dd, atom.Details,
		atom.Div, atom.Dl, atom.Dt, atom.Fieldset, atom.Figcaption, atom.Figure, atom.Footer,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Header, atom.Hr, atom.Li,
		atom.Main, atom.Nav, atom.Ol, atom.P, atom.Pre, atom.Section, atom.Table, atom.Tbody,
		atom.Thead, atom.Tfoot, atom.Tr, atom.Ul, atom.Summary:
		return true
	case atom.Span:
		return hasClass(n, "display")
	}
	return false
}

// indent returns the horizontal space an element takes from its children.
func indent(n *html.Node, st textStyle) float64 {
	switch n.DataAtom {
	case atom.Ul, atom.Ol:
		if attr(n, "data-scope") == "cross-ref" {
			return 1.2 * st.size
		}
		return 1.5 * st.size
	case atom.Blockquote:
		return 40
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func startsWithSpace(s string) bool {
	return s != "" && strings.IndexAny(s[:1], " \t\n\r\f") == 0
}

func endsWithSpace(s string) bool {
	return s != "" && strings.IndexAny(s[len(s)-1:], " \t\n\r\f") == 0
}

// Compile-time interface check.
var _ Measurer = (*Metrics)(nil)
