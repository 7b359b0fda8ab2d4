package frontmatter

import "strings"

const bom = "\ufeff"

// Opening markers. Each closes with itself or with "...".
var openers = []string{"---", "= yaml ="}

const altCloser = "..."

type block struct {
	meta      string
	body      string
	bodyBegin int
}

// split locates a leading delimited block. It reports false when the input
// does not open with a marker line or the marker is never closed.
func split(raw string) (block, bool) {
	s := strings.TrimPrefix(raw, bom)

	first, rest, hasRest := cutLine(s)
	marker := ""
	for _, m := range openers {
		if trimLine(first) == m {
			marker = m
			break
		}
	}
	if marker == "" || !hasRest {
		return block{}, false
	}

	var meta strings.Builder
	lineNo := 1
	for {
		line, next, more := cutLine(rest)
		lineNo++
		if t := trimLine(line); t == marker || t == altCloser {
			return block{meta: meta.String(), body: next, bodyBegin: lineNo + 1}, true
		}
		if !more {
			return block{}, false
		}
		meta.WriteString(strings.TrimSuffix(line, "\r"))
		meta.WriteByte('\n')
		rest = next
	}
}

// cutLine returns the first line without its newline, the remainder, and
// whether a newline was found.
func cutLine(s string) (line, rest string, found bool) {
	return strings.Cut(s, "\n")
}

func trimLine(line string) string {
	return strings.TrimRight(line, " \t\r")
}
