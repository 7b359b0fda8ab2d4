package measure

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/alnah/go-md2cv/internal/layout"
	"github.com/alnah/go-md2cv/internal/styles"
)

// encodePNG returns a blank PNG of the given size.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func newTestSurface(t *testing.T) Surface {
	t.Helper()

	cfg := styles.DefaultConfig()
	g, err := cfg.Geometry()
	if err != nil {
		t.Fatalf("Geometry() error = %v", err)
	}
	return Surface{Config: cfg, Geometry: g}
}

func measureOne(t *testing.T, m *Metrics, s Surface, b layout.Block) Extent {
	t.Helper()

	got, err := m.Measure(context.Background(), s, []layout.Block{b})
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	return got[0]
}

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	for i, f := range m.faces {
		if f == nil {
			t.Errorf("face %d not loaded", i)
		}
	}
}

// ---------------------------------------------------------------------------
// TestMetrics_Measure - Height estimates
// ---------------------------------------------------------------------------

func TestMetrics_Measure(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	if err != nil {
		t.Fatal(err)
	}
	s := newTestSurface(t)
	line := s.Config.FontSize * s.Config.LineHeight
	par := s.Config.ParagraphSpace

	t.Run("one line paragraph", func(t *testing.T) {
		t.Parallel()

		got := measureOne(t, m, s, layout.Block{Kind: layout.KindParagraph, Markup: "<p>Hello world</p>"})
		if want := round2(line + par); got.Flow != want {
			t.Errorf("Flow = %v, want %v", got.Flow, want)
		}
		if got.Leading != got.Flow {
			t.Errorf("Leading = %v, want %v (no top margin)", got.Leading, got.Flow)
		}
	})

	t.Run("long paragraph wraps", func(t *testing.T) {
		t.Parallel()

		short := measureOne(t, m, s, layout.Block{Markup: "<p>word</p>"})
		long := measureOne(t, m, s, layout.Block{Markup: "<p>" + strings.Repeat("word ", 200) + "</p>"})
		if long.Flow < short.Flow+5*line {
			t.Errorf("long Flow = %v, want several lines more than %v", long.Flow, short.Flow)
		}
	})

	t.Run("heading leading drops top margin", func(t *testing.T) {
		t.Parallel()

		got := measureOne(t, m, s, layout.Block{Kind: layout.KindHeading, Markup: "<h2>Experience</h2>"})
		if round2(got.Flow-got.Leading) != 20 {
			t.Errorf("Flow - Leading = %v, want 20", got.Flow-got.Leading)
		}
	})

	t.Run("page break is zero", func(t *testing.T) {
		t.Parallel()

		got := measureOne(t, m, s, layout.Block{Kind: layout.KindPageBreak, Markup: `<div class="md-it-newpage"></div>`})
		if got != (Extent{}) {
			t.Errorf("page break extent = %+v, want zero", got)
		}
	})

	t.Run("line break adds a line", func(t *testing.T) {
		t.Parallel()

		one := measureOne(t, m, s, layout.Block{Markup: "<p>a b</p>"})
		two := measureOne(t, m, s, layout.Block{Markup: "<p>a<br/>b</p>"})
		if diff := two.Flow - one.Flow; round2(diff) != round2(line) {
			t.Errorf("br added %v, want %v", diff, line)
		}
	})

	t.Run("definition list is one row", func(t *testing.T) {
		t.Parallel()

		got := measureOne(t, m, s, layout.Block{Kind: layout.KindDefinitionList, Markup: "<dl><dt>School</dt><dd>Boston</dd></dl>"})
		if want := round2(line + 10); got.Flow != want {
			t.Errorf("Flow = %v, want %v", got.Flow, want)
		}
	})

	t.Run("list items stack", func(t *testing.T) {
		t.Parallel()

		one := measureOne(t, m, s, layout.Block{Kind: layout.KindList, Markup: "<ul><li>a</li></ul>"})
		three := measureOne(t, m, s, layout.Block{Kind: layout.KindList, Markup: "<ul><li>a</li><li>b</li><li>c</li></ul>"})
		if diff := round2(three.Flow - one.Flow); diff != round2(2*(line+par)) {
			t.Errorf("two more items added %v, want %v", diff, 2*(line+par))
		}
	})

	t.Run("wide runes wrap without spaces", func(t *testing.T) {
		t.Parallel()

		got := measureOne(t, m, s, layout.Block{Markup: "<p>" + strings.Repeat("漢", 200) + "</p>"})
		perLine := s.Geometry.ContentWidth() / s.Config.FontSize
		wantLines := float64(int(200/perLine) + 1)
		if want := round2(wantLines*line + par); got.Flow != want {
			t.Errorf("Flow = %v, want %v", got.Flow, want)
		}
	})

	t.Run("embedded image uses its aspect ratio", func(t *testing.T) {
		t.Parallel()

		src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, 200, 100))
		got := measureOne(t, m, s, layout.Block{Markup: `<div><img src="` + src + `"/></div>`})
		if got.Flow != 100 {
			t.Errorf("Flow = %v, want 100", got.Flow)
		}
	})

	t.Run("wide image shrinks to the content width", func(t *testing.T) {
		t.Parallel()

		src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, 4000, 2000))
		got := measureOne(t, m, s, layout.Block{Markup: `<div><img src="` + src + `"/></div>`})
		if want := round2(s.Geometry.ContentWidth() / 2); got.Flow != want {
			t.Errorf("Flow = %v, want %v", got.Flow, want)
		}
	})

	t.Run("explicit image height", func(t *testing.T) {
		t.Parallel()

		got := measureOne(t, m, s, layout.Block{Markup: `<div><img src="x.png" height="120"/></div>`})
		if got.Flow != 120 {
			t.Errorf("Flow = %v, want 120", got.Flow)
		}
	})
}

func TestMetrics_Deterministic(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	if err != nil {
		t.Fatal(err)
	}
	s := newTestSurface(t)
	blocks := []layout.Block{
		{Kind: layout.KindHeader, Markup: `<div class="resume-header"><h1>Jane Doe</h1><span class="resume-header-item no-separator">jane@example.com</span></div>`},
		{Kind: layout.KindHeading, Markup: "<h2>Education</h2>"},
		{Kind: layout.KindParagraph, Markup: "<p>" + strings.Repeat("lorem ipsum ", 40) + "</p>"},
	}

	first, err := m.Measure(context.Background(), s, blocks)
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := m.Measure(context.Background(), s, blocks)
		if err != nil {
			t.Fatal(err)
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("block %d: %+v then %+v", i, first[i], again[i])
			}
		}
	}
}

func TestMetrics_FontSizeScalesHeight(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	if err != nil {
		t.Fatal(err)
	}
	small := newTestSurface(t)
	large := small
	large.Config.FontSize = 30

	b := layout.Block{Markup: "<p>" + strings.Repeat("text ", 100) + "</p>"}
	if measureOne(t, m, large, b).Flow <= measureOne(t, m, small, b).Flow {
		t.Error("larger font should measure taller")
	}
}

func TestMetrics_Errors(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	if err != nil {
		t.Fatal(err)
	}

	t.Run("invalid geometry", func(t *testing.T) {
		t.Parallel()

		_, err := m.Measure(context.Background(), Surface{}, []layout.Block{{Markup: "<p>x</p>"}})
		if !errors.Is(err, layout.ErrInvalidGeometry) {
			t.Errorf("Measure() error = %v, want ErrInvalidGeometry", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := m.Measure(ctx, newTestSurface(t), []layout.Block{{Markup: "<p>x</p>"}})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Measure() error = %v, want context.Canceled", err)
		}
	})
}
