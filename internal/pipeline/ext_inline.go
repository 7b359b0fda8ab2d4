package pipeline

import (
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Icons maps shortcode names to the glyph rendered in their place.
var Icons = map[string]string{
	"email":    "✉️",
	"phone":    "📞",
	"website":  "🌐",
	"location": "📍",
	"github":   "📦",
	"linkedin": "💼",
	"twitter":  "🐦",
	"globe":    "🌍",
	"home":     "🏠",
	"calendar": "📅",
	"download": "⬇️",
}

// commands lists the recognized backslash commands.
var commands = map[string]bool{
	"newpage": true,
	"LaTeX":   true,
	"TeX":     true,
	"hfill":   true,
}

var (
	commandPattern   = regexp.MustCompile(`^\\([A-Za-z]+)`)
	iconPattern      = regexp.MustCompile(`^:([a-z0-9_+-]+):`)
	referencePattern = regexp.MustCompile(`^\[~([A-Za-z0-9_.:-]+)\]`)
)

// mathParser recognizes $inline$ and $$display$$ expressions on one line.
// An opening $ must be followed by a non-space, and a closing $ must not be
// preceded by a space or followed by a digit, so prices stay text.
type mathParser struct{}

func (p *mathParser) Trigger() []byte { return []byte{'$'} }

func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 2 || line[0] != '$' {
		return nil
	}

	if line[1] == '$' {
		end := indexUnescaped(line[2:], "$$")
		if end < 1 {
			return nil
		}
		block.Advance(end + 4)
		return &Math{Display: true, Value: copyBytes(line[2 : 2+end])}
	}

	if isSpaceByte(line[1]) {
		return nil
	}
	for i := 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '$':
			if isSpaceByte(line[i-1]) || (i+1 < len(line) && isDigit(line[i+1])) {
				continue
			}
			block.Advance(i + 1)
			return &Math{Value: copyBytes(line[1:i])}
		}
	}
	return nil
}

// commandParser recognizes \newpage, \LaTeX, \TeX and \hfill.
type commandParser struct{}

func (p *commandParser) Trigger() []byte { return []byte{'\\'} }

func (p *commandParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := commandPattern.FindSubmatch(line)
	if m == nil || !commands[string(m[1])] {
		return nil
	}
	block.Advance(len(m[0]))
	return &Command{Name: string(m[1])}
}

// iconParser turns known :name: shortcodes into glyphs.
type iconParser struct{}

func (p *iconParser) Trigger() []byte { return []byte{':'} }

func (p *iconParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := iconPattern.FindSubmatch(line)
	if m == nil {
		return nil
	}
	glyph, ok := Icons[string(m[1])]
	if !ok {
		return nil
	}
	block.Advance(len(m[0]))
	return &Icon{Name: string(m[1]), Glyph: glyph}
}

// crossRefReferenceParser resolves [~label] against the definitions found
// during block parsing. Unknown labels stay literal text.
type crossRefReferenceParser struct{}

func (p *crossRefReferenceParser) Trigger() []byte { return []byte{'['} }

func (p *crossRefReferenceParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := referencePattern.FindSubmatch(line)
	if m == nil {
		return nil
	}
	refs := crossRefs(pc)
	label := string(m[1])
	index, ok := refs.order[label]
	if !ok {
		return nil
	}
	block.Advance(len(m[0]))
	refs.refs[label]++
	return &CrossRefReference{Label: label, Index: index, Ordinal: refs.refs[label]}
}

func indexUnescaped(b []byte, sep string) int {
	for i := 0; i+len(sep) <= len(b); i++ {
		if b[i] == '\\' {
			i++
			continue
		}
		if string(b[i:i+len(sep)]) == sep {
			return i
		}
	}
	return -1
}

func copyBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
