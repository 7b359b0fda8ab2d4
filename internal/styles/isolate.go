package styles

import (
	"strings"
)

// EscapeCSS prevents CSS from closing the surrounding style element.
func EscapeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// StyleElement wraps css in a style element.
func StyleElement(css string) string {
	return "<style>" + EscapeCSS(css) + "</style>"
}

// Isolate wraps body in a host element whose declarative shadow root holds
// the sheet. Host styles do not reach the content and the sheet does not
// apply outside it.
func Isolate(sheet Sheet, hostClass, body string) string {
	var b strings.Builder
	b.WriteString(`<div`)
	if hostClass != "" {
		b.WriteString(` class="`)
		b.WriteString(hostClass)
		b.WriteString(`"`)
	}
	b.WriteString(`><template shadowrootmode="open">`)
	b.WriteString(StyleElement(sheet.CSS()))
	b.WriteString(body)
	b.WriteString(`</template></div>`)
	return b.String()
}

// InjectCSS inserts a style element into a full HTML document.
// Tries </head> first, then <body>, then prepends to the document.
func InjectCSS(document, css string) string {
	if css == "" {
		return document
	}

	styleBlock := StyleElement(css)
	lower := strings.ToLower(document)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return document[:idx] + styleBlock + document[idx:]
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		return document[:idx] + styleBlock + document[idx:]
	}
	return styleBlock + document
}
