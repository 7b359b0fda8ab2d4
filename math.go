package md2cv

import (
	"html"
	"strings"
)

// DefaultMathAssets is the KaTeX distribution loaded by the browser surfaces
// when a document holds math. Any base URL serving katex.min.css and
// katex.min.js works, file:// included.
const DefaultMathAssets = "https://cdn.jsdelivr.net/npm/katex@0.16.22/dist"

// mathMarker starts every math span the content renderer emits.
const mathMarker = `<span class="math `

// typesetJS replaces the TeX source of every math span under root with
// KaTeX output, descending into open shadow roots. Without KaTeX the source
// stays visible.
const typesetJS = `function md2cvTypeset(root) {
  if (!root || !window.katex) return;
  root.querySelectorAll('span.math').forEach((el) => {
    katex.render(el.textContent, el, {displayMode: el.classList.contains('display'), throwOnError: false});
  });
  root.querySelectorAll('*').forEach((el) => {
    if (el.shadowRoot) md2cvTypeset(el.shadowRoot);
  });
}`

// hasMath reports whether any block holds a math span.
func hasMath(blocks []Block) bool {
	for _, b := range blocks {
		if strings.Contains(b.Markup, mathMarker) {
			return true
		}
	}
	return false
}

// mathURL joins a KaTeX asset file onto base.
func mathURL(base, file string) string {
	return strings.TrimRight(base, "/") + "/" + file
}

// mathStylesheet links the KaTeX stylesheet. Shadow roots need their own
// copy for the selectors; fonts only load from the document one.
func mathStylesheet(base string) string {
	return `<link rel="stylesheet" href="` + html.EscapeString(mathURL(base, "katex.min.css")) + `">` + "\n"
}

// mathHead loads KaTeX in a document head.
func mathHead(base string) string {
	return mathStylesheet(base) +
		`<script src="` + html.EscapeString(mathURL(base, "katex.min.js")) + `"></script>` + "\n"
}

// mathTypeset typesets the element with id rootID, or the whole document
// when rootID is empty. rootID must already be a valid identifier.
func mathTypeset(rootID string) string {
	target := "document"
	if rootID != "" {
		target = "document.getElementById('" + rootID + "')"
	}
	return "<script>\n" + typesetJS + "\nmd2cvTypeset(" + target + ");\n</script>\n"
}
