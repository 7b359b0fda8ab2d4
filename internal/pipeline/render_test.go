package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/alnah/go-md2cv/internal/frontmatter"
	"github.com/alnah/go-md2cv/internal/layout"
)

func kinds(blocks []layout.Block) []layout.BlockKind {
	out := make([]layout.BlockKind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind
	}
	return out
}

func equalKinds(a, b []layout.BlockKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// TestBlocks_Kinds - One typed block per top-level node
// ---------------------------------------------------------------------------

func TestBlocks_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []layout.BlockKind
	}{
		{name: "heading", body: "## Education", want: []layout.BlockKind{layout.KindHeading}},
		{name: "paragraph", body: "Some text.", want: []layout.BlockKind{layout.KindParagraph}},
		{name: "list", body: "- a\n- b", want: []layout.BlockKind{layout.KindList}},
		{name: "definition list", body: "Term\n: Desc", want: []layout.BlockKind{layout.KindDefinitionList}},
		{name: "tilde definition", body: "Term\n  ~ Desc", want: []layout.BlockKind{layout.KindDefinitionList}},
		{name: "fenced code", body: "```go\nx := 1\n```", want: []layout.BlockKind{layout.KindRaw}},
		{name: "blockquote", body: "> quote", want: []layout.BlockKind{layout.KindRaw}},
		{
			name: "footnotes",
			body: "See note[^1].\n\n[^1]: The note.",
			want: []layout.BlockKind{layout.KindParagraph, layout.KindList},
		},
		{
			name: "page break between paragraphs",
			body: "A\n\n\\newpage\n\nB",
			want: []layout.BlockKind{layout.KindParagraph, layout.KindPageBreak, layout.KindParagraph},
		},
		{
			name: "page break without blank lines",
			body: "A\n\\newpage\nB",
			want: []layout.BlockKind{layout.KindParagraph, layout.KindPageBreak, layout.KindParagraph},
		},
		{
			name: "comment dropped",
			body: "<!-- replace with your details -->\n\n## Skills",
			want: []layout.BlockKind{layout.KindHeading},
		},
		{name: "empty body", body: "", want: []layout.BlockKind{}},
	}

	r := NewContentRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := kinds(r.Blocks(context.Background(), tt.body))
			if !equalKinds(got, tt.want) {
				t.Errorf("Blocks() kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBlocks_AdjacentDefinitionLists - Groups become sibling lists
// ---------------------------------------------------------------------------

func TestBlocks_AdjacentDefinitionLists(t *testing.T) {
	t.Parallel()

	body := "**Harvest University**\n  ~ Cambridge, MA\n\nM.S. in Cooking Science\n  ~ 09/2021 - 01/2023\n"
	blocks := NewContentRenderer().Blocks(context.Background(), body)

	want := []layout.BlockKind{layout.KindDefinitionList, layout.KindDefinitionList}
	if got := kinds(blocks); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i, b := range blocks {
		if !strings.HasPrefix(b.Markup, "<dl>") {
			t.Errorf("block %d = %q, want a <dl> element", i, b.Markup)
		}
		if strings.Count(b.Markup, "<dt>") != 1 {
			t.Errorf("block %d holds %d terms, want 1", i, strings.Count(b.Markup, "<dt>"))
		}
	}
	if !strings.Contains(blocks[1].Markup, "09/2021") {
		t.Errorf("second list lost its description: %q", blocks[1].Markup)
	}
}

func TestBlocks_TermWithSeveralDescriptionsStaysTogether(t *testing.T) {
	t.Parallel()

	body := "**Cooking Engineer Intern**\n  ~ Microwavesoft\n  ~ 07/2021 - Present\n"
	blocks := NewContentRenderer().Blocks(context.Background(), body)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if n := strings.Count(blocks[0].Markup, "<dd>"); n != 2 {
		t.Errorf("got %d descriptions, want 2", n)
	}
}

// ---------------------------------------------------------------------------
// TestRender_Sanitization - Script-capable constructs never survive
// ---------------------------------------------------------------------------

func TestRender_Sanitization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "script element",
			body:         "<script>alert(1)</script>\n\nHello",
			wantContains: []string{"Hello"},
			wantExcludes: []string{"<script", "alert(1)"},
		},
		{
			name:         "event handler",
			body:         `<p onclick="steal()">kept text</p>`,
			wantContains: []string{"kept text"},
			wantExcludes: []string{"onclick", "steal"},
		},
		{
			name:         "javascript link",
			body:         "[click](javascript:alert(1))",
			wantContains: []string{"click"},
			wantExcludes: []string{"javascript:"},
		},
		{
			name:         "unknown element keeps content",
			body:         "<custom-tag>inside</custom-tag>",
			wantContains: []string{"inside"},
			wantExcludes: []string{"custom-tag"},
		},
		{
			name:         "iframe removed",
			body:         `<iframe src="https://evil.example"></iframe>`,
			wantExcludes: []string{"iframe"},
		},
		{
			name:         "bare URL is linked with safe target",
			body:         "Visit https://example.com today",
			wantContains: []string{`href="https://example.com"`, `target="_blank"`, "noopener"},
		},
		{
			name:         "underline and spans survive",
			body:         `<u>Haha Ha</u>, <span class="iconify" data-icon="tabler:mail"></span>`,
			wantContains: []string{"<u>Haha Ha</u>", `data-icon="tabler:mail"`, `class="iconify"`},
		},
		{
			name:         "inline style filtered",
			body:         `<span style="font-weight: bold; position: fixed">x</span>`,
			wantContains: []string{"font-weight"},
			wantExcludes: []string{"position"},
		},
	}

	r := NewContentRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.Render(context.Background(), tt.body)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() missing %q in %q", want, got)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(got, bad) {
					t.Errorf("Render() contains %q in %q", bad, got)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRender_Extensions - Math, commands, icons, highlights
// ---------------------------------------------------------------------------

func TestRender_Extensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "inline math",
			body:         "Energy $E=mc^2$ here",
			wantContains: []string{`<span class="math inline">E=mc^2</span>`},
		},
		{
			name:         "display math",
			body:         "$$a < b$$",
			wantContains: []string{`<span class="math display">a &lt; b</span>`},
		},
		{
			name:         "prices are not math",
			body:         "Costs $5 and $10",
			wantContains: []string{"$5 and $10"},
			wantExcludes: []string{"math"},
		},
		{
			name:         "latex logo",
			body:         `Typeset in \LaTeX and $\LaTeX$`,
			wantContains: []string{`class="latex"`},
			wantExcludes: []string{`\LaTeX`},
		},
		{
			name:         "hfill",
			body:         `Left \hfill Right`,
			wantContains: []string{`<span class="hfill"></span>`},
		},
		{
			name:         "icon shortcode",
			body:         ":email: me",
			wantContains: []string{`data-icon="email"`, "✉️"},
		},
		{
			name:         "unknown shortcode stays text",
			body:         ":nothing: here",
			wantContains: []string{":nothing:"},
		},
		{
			name:         "highlight",
			body:         "a ==key skill== b",
			wantContains: []string{"<mark>key skill</mark>"},
		},
		{
			name:         "highlight inside fence untouched",
			body:         "```\na ==b== c\n```",
			wantContains: []string{"==b=="},
			wantExcludes: []string{"<mark>"},
		},
		{
			name:         "syntax highlighting uses classes",
			body:         "```go\npackage main\n```",
			wantContains: []string{`class="chroma"`},
		},
		{
			name:         "heading ids",
			body:         "## Work Experience",
			wantContains: []string{`id="work-experience"`},
		},
	}

	r := NewContentRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.Render(context.Background(), tt.body)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() missing %q in %q", want, got)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(got, bad) {
					t.Errorf("Render() contains %q in %q", bad, got)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBlocks_CrossReferences - Numbered citations
// ---------------------------------------------------------------------------

const citations = `## Publications

[~P1]: **Eating is All You Need**

    <u>Haha Ha</u>, San Zhang

[~P2]: **You Only Cook Once**

## Experience

- Created a soup recipe (see [~P2]) and [~P1]
- Unknown [~P9] stays text
`

func TestBlocks_CrossReferencesTrailing(t *testing.T) {
	t.Parallel()

	blocks := NewContentRenderer().Blocks(context.Background(), citations)
	want := []layout.BlockKind{layout.KindHeading, layout.KindHeading, layout.KindList, layout.KindList}
	if got := kinds(blocks); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}

	refs := blocks[2].Markup
	for _, s := range []string{
		`data-part="reference"`,
		`href="#cross-ref-p2"`,
		`>[2]</a>`,
		`>[1]</a>`,
		`id="cross-ref-p2-ref-1"`,
		"[~P9]",
	} {
		if !strings.Contains(refs, s) {
			t.Errorf("references missing %q in %q", s, refs)
		}
	}

	defs := blocks[3].Markup
	for _, s := range []string{
		`data-scope="cross-ref"`,
		`data-part="definitions"`,
		`data-label="[1]"`,
		`data-label="[2]"`,
		`id="cross-ref-p1"`,
		`href="#cross-ref-p1-ref-1"`,
		"Haha Ha",
	} {
		if !strings.Contains(defs, s) {
			t.Errorf("definitions missing %q in %q", s, defs)
		}
	}
	if strings.Index(defs, "You Only Cook Once") > strings.Index(defs, "Eating") {
		t.Error("definitions must follow first reference order")
	}
}

// ---------------------------------------------------------------------------
// TestRender_CrossReferenceNumbering - Numbers follow first reference
// ---------------------------------------------------------------------------

func TestRender_CrossReferenceNumbering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "reference order wins over definition order",
			body: "[~a]: Alpha\n\n[~b]: Beta\n\nSee [~b] then [~a].",
			want: []string{
				`href="#cross-ref-b" id="cross-ref-b-ref-1">[1]</a>`,
				`href="#cross-ref-a" id="cross-ref-a-ref-1">[2]</a>`,
				`data-label="[1]" id="cross-ref-b"`,
				`data-label="[2]" id="cross-ref-a"`,
			},
		},
		{
			name: "repeated reference keeps its number",
			body: "[~a]: Alpha\n\n[~b]: Beta\n\n[~b], [~a] and [~b] again.",
			want: []string{
				`id="cross-ref-b-ref-2">[1]</a>`,
				`data-label="[2]" id="cross-ref-a"`,
			},
		},
		{
			name: "unreferenced definitions come last",
			body: "[~a]: Alpha\n\n[~b]: Beta\n\n[~c]: Gamma\n\nOnly [~c].",
			want: []string{
				`data-label="[1]" id="cross-ref-c"`,
				`data-label="[2]" id="cross-ref-a"`,
				`data-label="[3]" id="cross-ref-b"`,
			},
		},
	}

	r := NewContentRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.Render(context.Background(), tt.body)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Render() missing %q in %q", want, got)
				}
			}
		})
	}
}

func TestBlocks_CrossReferencesInPlace(t *testing.T) {
	t.Parallel()

	r := NewContentRenderer(WithCrossRefPlacement(CrossRefInPlace))
	blocks := r.Blocks(context.Background(), citations)
	want := []layout.BlockKind{layout.KindHeading, layout.KindList, layout.KindHeading, layout.KindList}
	if got := kinds(blocks); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if !strings.Contains(blocks[1].Markup, `data-part="definitions"`) {
		t.Errorf("definitions not rendered under their heading: %q", blocks[1].Markup)
	}
}

// ---------------------------------------------------------------------------
// TestRenderHeader - Front matter header block
// ---------------------------------------------------------------------------

func TestRenderHeader(t *testing.T) {
	t.Parallel()

	r := NewContentRenderer()
	fm := frontmatter.FrontMatter{
		Name: "Jane Doe",
		Header: []frontmatter.HeaderItem{
			{Text: "jane@example.com", Link: "mailto:jane@example.com"},
			{Text: "**Berlin**"},
			{Text: "+1 555 0100", NewLine: true},
			{Text: "bad", Link: "javascript:alert(1)"},
		},
	}
	got := r.RenderHeader(context.Background(), fm)

	for _, s := range []string{
		`<div class="resume-header">`,
		"<h1>Jane Doe</h1>",
		`<a href="mailto:jane@example.com" target="_blank" rel="noopener noreferrer">jane@example.com</a>`,
		`<span class="resume-header-item no-separator"><strong>Berlin</strong></span>`,
		`<br/><span class="resume-header-item">+1 555 0100</span>`,
		`<span class="resume-header-item no-separator">bad</span>`,
	} {
		if !strings.Contains(got, s) {
			t.Errorf("RenderHeader() missing %q in %q", s, got)
		}
	}
	if strings.Contains(got, "javascript") {
		t.Errorf("unsafe link kept: %q", got)
	}
	if strings.Count(got, "no-separator") != 2 {
		t.Errorf("want separators suppressed on exactly 2 items: %q", got)
	}
}

func TestRenderHeader_Empty(t *testing.T) {
	t.Parallel()

	r := NewContentRenderer()
	if got := r.RenderHeader(context.Background(), frontmatter.FrontMatter{}); got != "" {
		t.Errorf("RenderHeader(empty) = %q, want \"\"", got)
	}
	blank := frontmatter.FrontMatter{Header: []frontmatter.HeaderItem{{Text: "  "}}}
	if got := r.RenderHeader(context.Background(), blank); got != "" {
		t.Errorf("RenderHeader(blank items) = %q, want \"\"", got)
	}
}

func TestRenderHeader_NameIsSanitized(t *testing.T) {
	t.Parallel()

	got := NewContentRenderer().RenderHeader(context.Background(), frontmatter.FrontMatter{
		Name: `Jane <img src=x onerror="alert(1)">`,
	})
	if strings.Contains(got, "onerror") {
		t.Errorf("RenderHeader() kept handler: %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestRenderResume - Header first, then body
// ---------------------------------------------------------------------------

func TestRenderResume(t *testing.T) {
	t.Parallel()

	raw := "---\nname: Jane Doe\nheader:\n  - text: jane@example.com\n---\n## Experience\n\nDid things.\n"
	res, blocks, err := NewContentRenderer().RenderResume(context.Background(), frontmatter.NewParser(frontmatter.PolicyError), raw)
	if err != nil {
		t.Fatalf("RenderResume() error = %v", err)
	}
	if res.FrontMatter.Name != "Jane Doe" {
		t.Errorf("FrontMatter.Name = %q", res.FrontMatter.Name)
	}
	want := []layout.BlockKind{layout.KindHeader, layout.KindHeading, layout.KindParagraph}
	if got := kinds(blocks); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if !strings.Contains(blocks[0].Markup, "Jane Doe") {
		t.Errorf("header block = %q", blocks[0].Markup)
	}
}

func TestRenderResume_NoFrontMatter(t *testing.T) {
	t.Parallel()

	_, blocks, err := NewContentRenderer().RenderResume(context.Background(), frontmatter.NewParser(frontmatter.PolicyError), "Just text")
	if err != nil {
		t.Fatalf("RenderResume() error = %v", err)
	}
	if len(blocks) != 1 || blocks[0].Kind != layout.KindParagraph {
		t.Errorf("blocks = %+v, want a single paragraph", blocks)
	}
}

func TestRenderResume_MalformedFrontMatter(t *testing.T) {
	t.Parallel()

	_, _, err := NewContentRenderer().RenderResume(context.Background(), frontmatter.NewParser(frontmatter.PolicyError), "---\nname: [x\n---\nbody")
	if err == nil {
		t.Fatal("RenderResume() error = nil, want ErrFrontMatter")
	}
}

// ---------------------------------------------------------------------------
// TestSingleElement - Every block is one measurable element
// ---------------------------------------------------------------------------

func TestSingleElement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "<p>x</p>\n", want: "<p>x</p>"},
		{in: "stray text", want: "<div>stray text</div>"},
		{in: "<p>a</p>\n<p>b</p>", want: "<div><p>a</p>\n<p>b</p></div>"},
		{in: "text <b>x</b>", want: "<div>text <b>x</b></div>"},
		{in: "   \n", want: ""},
		{in: "<!-- c -->", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := singleElement(tt.in); got != tt.want {
				t.Errorf("singleElement(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
