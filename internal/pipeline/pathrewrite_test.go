package pipeline

// Notes:
// - Path traversal tests check the observable behavior (path not rewritten)
//   rather than the containment check itself.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-md2cv/internal/layout"
)

// onePixelPNG is a valid 1x1 transparent PNG.
var onePixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// ---------------------------------------------------------------------------
// TestResolveLocalPaths - Images inlined, links made absolute
// ---------------------------------------------------------------------------

func TestResolveLocalPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "photo.png"), onePixelPNG, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		markup       string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "relative image embedded",
			markup:       `<p><img src="photo.png" alt="me"/></p>`,
			wantContains: []string{`src="data:image/png;base64,`, `alt="me"`},
		},
		{
			name:         "dot slash image embedded",
			markup:       `<p><img src="./photo.png"/></p>`,
			wantContains: []string{`src="data:image/png;base64,`},
		},
		{
			name:         "missing image unchanged",
			markup:       `<p><img src="missing.png"/></p>`,
			wantContains: []string{`src="missing.png"`},
		},
		{
			name:         "non-image file not embedded",
			markup:       `<p><img src="notes.txt"/></p>`,
			wantContains: []string{`src="notes.txt"`},
		},
		{
			name:         "traversal unchanged",
			markup:       `<p><img src="../../etc/passwd"/></p>`,
			wantContains: []string{`src="../../etc/passwd"`},
		},
		{
			name:         "remote image unchanged",
			markup:       `<p><img src="https://example.com/a.png"/></p>`,
			wantContains: []string{`src="https://example.com/a.png"`},
		},
		{
			name:         "relative link to file URL",
			markup:       `<p><a href="portfolio.pdf">portfolio</a></p>`,
			wantContains: []string{`href="file://`, `portfolio.pdf"`},
		},
		{
			name:         "anchor unchanged",
			markup:       `<p><a href="#cross-ref-p1">[1]</a></p>`,
			wantContains: []string{`href="#cross-ref-p1"`},
		},
		{
			name:         "mailto unchanged",
			markup:       `<p><a href="mailto:a@b.c">mail</a></p>`,
			wantContains: []string{`href="mailto:a@b.c"`},
			wantExcludes: []string{"file://"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := []layout.Block{{Kind: layout.KindParagraph, Markup: tt.markup, Height: 12}}
			out, err := ResolveLocalPaths(in, dir)
			if err != nil {
				t.Fatalf("ResolveLocalPaths() error = %v", err)
			}
			got := out[0].Markup
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("missing %q in %q", want, got)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(got, bad) {
					t.Errorf("unexpected %q in %q", bad, got)
				}
			}
			if out[0].Kind != layout.KindParagraph || out[0].Height != 12 {
				t.Errorf("block fields changed: %+v", out[0])
			}
			if in[0].Markup != tt.markup {
				t.Error("input block was modified")
			}
		})
	}
}

func TestResolveLocalPaths_EmptySourceDir(t *testing.T) {
	t.Parallel()

	in := []layout.Block{{Markup: `<img src="a.png"/>`}}
	out, err := ResolveLocalPaths(in, "")
	if err != nil {
		t.Fatalf("ResolveLocalPaths() error = %v", err)
	}
	if out[0].Markup != in[0].Markup {
		t.Errorf("markup changed without source dir: %q", out[0].Markup)
	}
}

func TestResolveLocalPaths_OversizedImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "big.png"), onePixelPNG, 0o600); err != nil {
		t.Fatal(err)
	}

	original := MaxEmbeddedImageSize
	t.Cleanup(func() { MaxEmbeddedImageSize = original })
	MaxEmbeddedImageSize = 10

	out, err := ResolveLocalPaths([]layout.Block{{Markup: `<p><img src="big.png"/></p>`}}, dir)
	if err != nil {
		t.Fatalf("ResolveLocalPaths() error = %v", err)
	}
	if !strings.Contains(out[0].Markup, `src="big.png"`) {
		t.Errorf("oversized image embedded: %q", out[0].Markup)
	}
}
