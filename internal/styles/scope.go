package styles

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// At-rules whose nested selectors are rewritten. Every other block at-rule
// (@font-face, @page, @keyframes, ...) is copied unchanged.
var scopedAtRules = map[string]bool{
	"@media":     true,
	"@supports":  true,
	"@layer":     true,
	"@container": true,
	"@document":  true,
}

// Selectors naming the document itself map to the scope root.
var hostSelectors = []string{":root", "html", "body"}

// Scoped returns a copy of the sheet with every selector prefixed by #rootID.
func (s Sheet) Scoped(rootID string) Sheet {
	return Sheet{
		Base:   Scope(s.Base, rootID),
		Config: Scope(s.Config, rootID),
		Custom: Scope(s.Custom, rootID),
	}
}

// Scope rewrites css so every rule applies only under the element with id
// rootID. Comments are dropped. Malformed input is rewritten up to the first
// unrecoverable error.
func Scope(src, rootID string) string {
	if strings.TrimSpace(src) == "" || rootID == "" {
		return src
	}
	sc := &scoper{
		p:    css.NewParser(parse.NewInput(strings.NewReader(src)), false),
		root: "#" + rootID,
	}
	sc.run()
	return sc.out.String()
}

type atFrame struct {
	scoped bool
	raw    strings.Builder // TokenGrammar body of at-rules the parser does not know
}

type scoper struct {
	p       *css.Parser
	root    string
	out     strings.Builder
	pending []string
	stack   []*atFrame
}

func (s *scoper) prefixing() bool {
	for _, f := range s.stack {
		if !f.scoped {
			return false
		}
	}
	return true
}

func (s *scoper) run() {
	for {
		gt, _, data := s.p.Next()
		switch gt {
		case css.ErrorGrammar:
			return

		case css.CommentGrammar:

		case css.AtRuleGrammar:
			s.out.WriteString(string(data) + prelude(s.p.Values()) + ";\n")

		case css.BeginAtRuleGrammar:
			name := strings.ToLower(string(data))
			s.out.WriteString(string(data) + prelude(s.p.Values()) + " {\n")
			s.stack = append(s.stack, &atFrame{scoped: s.prefixing() && scopedAtRules[name]})

		case css.EndAtRuleGrammar:
			if n := len(s.stack); n > 0 {
				f := s.stack[n-1]
				s.stack = s.stack[:n-1]
				if body := f.raw.String(); body != "" {
					if f.scoped {
						body = Scope(body, strings.TrimPrefix(s.root, "#"))
					}
					s.out.WriteString(body)
				}
			}
			s.out.WriteString("}\n")

		case css.QualifiedRuleGrammar:
			s.pending = append(s.pending, splitSelectors(selectorText(data, s.p.Values()))...)

		case css.BeginRulesetGrammar:
			sels := append(s.pending, splitSelectors(selectorText(data, s.p.Values()))...)
			s.pending = nil
			if s.prefixing() {
				for i, sel := range sels {
					sels[i] = prefixSelector(sel, s.root)
				}
			}
			s.out.WriteString(strings.Join(sels, ", ") + " {\n")

		case css.EndRulesetGrammar:
			s.out.WriteString("}\n")

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			s.out.WriteString("  " + string(data) + ": " + joinTokens(s.p.Values()) + ";\n")

		case css.TokenGrammar:
			if n := len(s.stack); n > 0 {
				s.stack[n-1].raw.Write(data)
			} else {
				s.out.Write(data)
			}
		}
	}
}

// prelude renders at-rule parameters with a leading space.
func prelude(tokens []css.Token) string {
	if p := joinTokens(tokens); p != "" {
		return " " + p
	}
	return ""
}

func selectorText(data []byte, values []css.Token) string {
	var b strings.Builder
	b.Write(data)
	for _, v := range values {
		b.Write(v.Data)
	}
	return b.String()
}

// joinTokens concatenates token data, collapsing whitespace runs.
func joinTokens(tokens []css.Token) string {
	var b strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.Write(t.Data)
	}
	return b.String()
}

// splitSelectors splits a selector list on commas outside parentheses,
// brackets and strings.
func splitSelectors(list string) []string {
	var (
		out   []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(list); i++ {
		c := list[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			out = appendSelector(out, list[start:i])
			start = i + 1
		}
	}
	return appendSelector(out, list[start:])
}

func appendSelector(out []string, sel string) []string {
	if sel = strings.Join(strings.Fields(sel), " "); sel != "" {
		out = append(out, sel)
	}
	return out
}

// prefixSelector scopes one complex selector under root. Leading html,
// body and :root compounds collapse onto root itself.
func prefixSelector(sel, root string) string {
	rest := sel
	host := false
	for {
		stripped, ok := cutHost(rest)
		if !ok {
			break
		}
		host = true
		rest = stripped
	}
	if !host {
		return root + " " + sel
	}
	return root + rest
}

// cutHost removes one leading host compound and any whitespace after a
// following host compound.
func cutHost(sel string) (string, bool) {
	lower := strings.ToLower(sel)
	for _, h := range hostSelectors {
		if !strings.HasPrefix(lower, h) {
			continue
		}
		rest := sel[len(h):]
		if rest != "" && isIdentByte(rest[0]) {
			continue
		}
		if next := strings.TrimLeft(rest, " "); next != rest && startsWithHost(next) {
			return next, true
		}
		return rest, true
	}
	return sel, false
}

func startsWithHost(sel string) bool {
	lower := strings.ToLower(sel)
	for _, h := range hostSelectors {
		if strings.HasPrefix(lower, h) && (len(sel) == len(h) || !isIdentByte(sel[len(h)])) {
			return true
		}
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}
