package styles

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestScope - Selector prefixing
// ---------------------------------------------------------------------------

func TestScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		css          string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "simple selector",
			css:          "p { color: red; }",
			wantContains: []string{"#card p {", "color: red;"},
		},
		{
			name:         "selector list",
			css:          "h2, h3 { margin: 0; }",
			wantContains: []string{"#card h2, #card h3 {"},
		},
		{
			name:         "body maps to root",
			css:          "body { margin: 0; }",
			wantContains: []string{"#card {"},
			wantExcludes: []string{"body"},
		},
		{
			name:         "html body descendant",
			css:          "html body p { margin: 0; }",
			wantContains: []string{"#card p {"},
		},
		{
			name:         "root pseudo class",
			css:          ":root { --x: 1; }",
			wantContains: []string{"#card {"},
		},
		{
			name:         "body with class",
			css:          "body.dark p { color: white; }",
			wantContains: []string{"#card.dark p {"},
		},
		{
			name:         "tbody is not body",
			css:          "tbody { border: 0; }",
			wantContains: []string{"#card tbody {"},
		},
		{
			name:         "media query nested",
			css:          "@media print { h1 { color: black; } }",
			wantContains: []string{"@media print {", "#card h1 {"},
		},
		{
			name:         "font face untouched",
			css:          `@font-face { font-family: "X"; src: url(x.woff2); }`,
			wantContains: []string{"@font-face {", "font-family:"},
			wantExcludes: []string{"#card"},
		},
		{
			name:         "keyframes untouched",
			css:          "@keyframes spin { from { opacity: 0; } to { opacity: 1; } }",
			wantContains: []string{"@keyframes spin {"},
			wantExcludes: []string{"#card"},
		},
		{
			name:         "attribute selector with comma",
			css:          `[data-label="a,b"] { color: red; }`,
			wantContains: []string{`#card [data-label="a,b"] {`},
		},
		{
			name:         "pseudo element",
			css:          `.resume-header-item:not(.no-separator)::after { content: " | "; }`,
			wantContains: []string{"#card .resume-header-item:not(.no-separator)::after {"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Scope(tt.css, "card")
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Scope() missing %q in:\n%s", want, got)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(got, bad) {
					t.Errorf("Scope() unexpected %q in:\n%s", bad, got)
				}
			}
		})
	}
}

func TestScope_EmptyInputs(t *testing.T) {
	t.Parallel()

	if got := Scope("", "card"); got != "" {
		t.Errorf("Scope(\"\") = %q", got)
	}
	if got := Scope("p {}", ""); got != "p {}" {
		t.Errorf("Scope() without root = %q", got)
	}
}

func TestSheet_Scoped(t *testing.T) {
	t.Parallel()

	sheet := Sheet{Base: "p { margin: 0; }", Config: "h1 { color: red; }", Custom: "li { margin: 0; }"}
	scoped := sheet.Scoped("thumb")
	for _, layer := range []string{scoped.Base, scoped.Config, scoped.Custom} {
		if !strings.Contains(layer, "#thumb ") {
			t.Errorf("layer not scoped: %q", layer)
		}
	}
}

func TestPrefixSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"p", "#r p"},
		{"html", "#r"},
		{"body > p", "#r > p"},
		{"HTML BODY", "#r"},
		{"body-text", "#r body-text"},
		{"*", "#r *"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := prefixSelector(tt.in, "#r"); got != tt.want {
				t.Errorf("prefixSelector(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitSelectors(t *testing.T) {
	t.Parallel()

	got := splitSelectors(" a ,  b   c, :is(d, e) ,[x='1,2']")
	want := []string{"a", "b c", ":is(d, e)", "[x='1,2']"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitSelectors() = %q, want %q", got, want)
	}
}
