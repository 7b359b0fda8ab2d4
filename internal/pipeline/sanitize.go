package pipeline

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

var idPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:.-]*$`)

// htmlPolicy is an HTML-only allow-list. Unknown elements are removed with
// their text kept; script, style, SVG and MathML never survive.
func htmlPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.RequireNoFollowOnLinks(false)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		p.AllowRelativeURLs(true)
		p.AllowURLSchemes("http", "https", "mailto", "tel")

		p.AllowElements("span", "div", "u", "mark", "sup", "sub", "br", "dl", "dt", "dd")
		p.AllowStyling()
		p.AllowDataAttributes()
		p.AllowAttrs("id").Matching(idPattern).Globally()
		p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
		p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
		p.AllowAttrs("rel").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
		p.AllowStyles(
			"color", "background-color", "font-size", "font-weight", "font-style",
			"text-align", "text-decoration", "margin", "margin-top", "margin-bottom",
			"margin-left", "margin-right", "padding", "display", "float", "width",
		).Globally()
		policy = p
	})
	return policy
}

// Sanitize removes every construct outside the allow-list. It never fails.
func Sanitize(markup string) string {
	return htmlPolicy().Sanitize(markup)
}
