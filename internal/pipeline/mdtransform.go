package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// ==text== becomes a pair of Private Use Area runes before parsing. Goldmark
// passes them through untouched and restoreMarks turns them into <mark>.
const (
	markOpen  = "\uE000"
	markClose = "\uE001"
)

var (
	lineBreaks = regexp.MustCompile(`\r\n?`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
	highlight  = regexp.MustCompile(`==([^=\n]+?)==`)
	// "Term\n  ~ description" opens a definition like ": description". The
	// marker must start the line or Goldmark reads it as paragraph text.
	tildeMarker = regexp.MustCompile(`^ {0,3}~([ \t])`)
	newPageLine = regexp.MustCompile(`^\s*\\newpage\s*$`)
	fenceLine   = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})([^\\n]*)$")
)

// preprocess rewrites resume syntax Goldmark does not read natively. Fenced
// code is copied verbatim.
func preprocess(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	lines := strings.Split(lineBreaks.ReplaceAllString(content, "\n"), "\n")
	var fence fence
	for i, line := range lines {
		if fence.step(line) {
			continue
		}
		switch {
		case newPageLine.MatchString(line):
			lines[i] = "\n\\newpage\n"
		default:
			line = tildeMarker.ReplaceAllString(line, ":$1")
			lines[i] = highlight.ReplaceAllString(line, markOpen+"$1"+markClose)
		}
	}
	return blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
}

// fence tracks fenced code blocks line by line. The zero value is outside
// any fence.
type fence struct {
	marker string
}

// step consumes line and reports whether it belongs to a fence, delimiters
// included. A fence closes on a bare run of at least as many of its
// characters.
func (f *fence) step(line string) bool {
	m := fenceLine.FindStringSubmatch(line)
	if f.marker == "" {
		if m != nil {
			f.marker = m[1]
			return true
		}
		return false
	}
	if m != nil && m[1][0] == f.marker[0] && len(m[1]) >= len(f.marker) && strings.TrimSpace(m[2]) == "" {
		f.marker = ""
	}
	return true
}

func restoreMarks(markup string) string {
	return strings.NewReplacer(markOpen, "<mark>", markClose, "</mark>").Replace(markup)
}
