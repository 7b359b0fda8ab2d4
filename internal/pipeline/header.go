package pipeline

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2cv/internal/frontmatter"
)

// anchorTag matches links produced inside an item that is itself a link.
var anchorTag = regexp.MustCompile(`</?a\b[^>]*>`)

var headerLinkSchemes = map[string]bool{
	"":       true,
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

// RenderHeader renders the name and contact items of fm. Empty front matter
// produces "".
//
// An item is followed by a separator unless it is the last one or the next
// item starts a new line. An item flagged NewLine is preceded by a line break.
func (r *ContentRenderer) RenderHeader(ctx context.Context, fm frontmatter.FrontMatter) string {
	var items []frontmatter.HeaderItem
	for _, it := range fm.Header {
		if strings.TrimSpace(it.Text) != "" {
			items = append(items, it)
		}
	}
	name := strings.TrimSpace(fm.Name)
	if name == "" && len(items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div class="resume-header">`)
	if name != "" {
		b.WriteString("<h1>")
		b.WriteString(r.inline(ctx, name))
		b.WriteString("</h1>")
	}

	for i, it := range items {
		if it.NewLine && i > 0 {
			b.WriteString("<br/>")
		}
		class := "resume-header-item"
		if i == len(items)-1 || items[i+1].NewLine {
			class += " no-separator"
		}
		b.WriteString(`<span class="` + class + `">`)

		text := r.inline(ctx, it.Text)
		if href, ok := headerLink(it.Link); ok {
			b.WriteString(`<a href="` + html.EscapeString(href) + `" target="_blank" rel="noopener noreferrer">`)
			b.WriteString(anchorTag.ReplaceAllString(text, ""))
			b.WriteString("</a>")
		} else {
			b.WriteString(text)
		}
		b.WriteString("</span>")
	}
	b.WriteString("</div>")
	return b.String()
}

// inline renders s as inline markdown, sanitized, without the paragraph wrapper.
func (r *ContentRenderer) inline(ctx context.Context, s string) string {
	out := strings.TrimSpace(Sanitize(r.conv.ToFragment(ctx, strings.TrimSpace(s))))
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") &&
		strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return out
}

func headerLink(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}
	u, err := url.Parse(link)
	if err != nil || !headerLinkSchemes[strings.ToLower(u.Scheme)] {
		return "", false
	}
	return link, true
}
