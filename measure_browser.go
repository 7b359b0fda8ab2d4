package md2cv

import (
	"context"
	"fmt"
	"math"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-md2cv/internal/layout"
	"github.com/alnah/go-md2cv/internal/measure"
)

// surfaceID is the root element of the measurement, preview and print surfaces.
// Sheets are scoped under it so host selectors like body map onto the content.
const surfaceID = "md2cv-content"

// loadMathScript adds KaTeX to the blank page and reports whether it loaded.
const loadMathScript = `(css, js) => new Promise((resolve) => {
  if (window.katex) {
    resolve(true);
    return;
  }
  const link = document.createElement('link');
  link.rel = 'stylesheet';
  link.href = css;
  document.head.appendChild(link);
  const script = document.createElement('script');
  script.src = js;
  script.onload = () => resolve(true);
  script.onerror = () => resolve(false);
  document.head.appendChild(script);
})`

// measureScript lays blocks out in a shadow root of the blank page, once all
// in flow and once each alone, after the sheet is committed and fonts are ready.
// Math is typeset first when KaTeX is loaded. It returns flow and leading
// extents interleaved.
const measureScript = `async (css, blocks, width, rootID, mathCSS) => {
  const host = document.createElement('div');
  host.style.cssText = 'position:absolute;left:0;top:0;visibility:hidden;width:' + width + 'px';
  document.body.appendChild(host);
  const shadow = host.attachShadow({mode: 'open'});
  const style = document.createElement('style');
  style.textContent = css;
  shadow.appendChild(style);
  if (mathCSS) {
    const link = document.createElement('link');
    link.rel = 'stylesheet';
    link.href = mathCSS;
    const loaded = new Promise((resolve) => { link.onload = link.onerror = resolve; });
    shadow.appendChild(link);
    await loaded;
  }
  ` + typesetJS + `

  const surface = (markup) => {
    const root = document.createElement('div');
    root.id = rootID;
    root.style.display = 'flow-root';
    root.innerHTML = markup;
    shadow.appendChild(root);
    md2cvTypeset(root);
    return root;
  };
  const margins = (el) => {
    const cs = getComputedStyle(el);
    return [parseFloat(cs.marginTop) || 0, parseFloat(cs.marginBottom) || 0];
  };

  const flow = surface(blocks.join(''));
  await document.fonts.ready;

  const out = [];
  const children = Array.from(flow.children);
  for (let i = 0; i < blocks.length; i++) {
    const el = children[i];
    if (!el) {
      out.push(0, 0);
      continue;
    }
    const [top, bottom] = margins(el);
    const inFlow = el.getBoundingClientRect().height + top + bottom;
    const alone = surface(blocks[i]);
    const first = alone.firstElementChild;
    const leading = alone.getBoundingClientRect().height - (first ? margins(first)[0] : 0);
    alone.remove();
    out.push(inFlow, leading);
  }
  host.remove();
  return out;
}`

// browserMeasurer measures blocks with the browser's own layout engine.
// Math is typeset with KaTeX from the math base URL when blocks hold any.
type browserMeasurer struct {
	browser *browser
	math    string
	log     *zap.Logger
}

func newBrowserMeasurer(b *browser, math string, log *zap.Logger) *browserMeasurer {
	return &browserMeasurer{browser: b, math: math, log: log.Named("measure")}
}

// Measure returns one extent per block. A browser that cannot be reached
// yields ErrMeasurementUnavailable.
func (m *browserMeasurer) Measure(ctx context.Context, s Surface, blocks []Block) ([]Extent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Geometry.Validate(); err != nil {
		return nil, err
	}

	rb, err := m.browser.connect()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", measure.ErrMeasurementUnavailable, err)
	}

	blank, err := rb.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", measure.ErrMeasurementUnavailable, ErrPageCreate, err)
	}
	defer func() { _ = blank.Close() }()

	timeout, err := m.browser.deadline(ctx)
	if err != nil {
		return nil, err
	}
	page := blank.Context(ctx).Timeout(timeout)

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", measure.ErrMeasurementUnavailable, ErrPageLoad, err)
	}

	markups := make([]string, len(blocks))
	for i, blk := range blocks {
		markups[i] = blk.Markup
	}

	mathCSS := ""
	if m.math != "" && hasMath(blocks) {
		mathCSS = mathURL(m.math, "katex.min.css")
		loaded, err := page.Eval(loadMathScript, mathCSS, mathURL(m.math, "katex.min.js"))
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: loading math assets: %v", measure.ErrMeasurementUnavailable, err)
		case !loaded.Value.Bool():
			m.log.Warn("math assets unavailable, measuring TeX source", zap.String("base", m.math))
			mathCSS = ""
		}
	}

	css := s.Sheet.Scoped(surfaceID).CSS()
	obj, err := page.Eval(measureScript, css, markups, s.Geometry.ContentWidth(), surfaceID, mathCSS)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", measure.ErrMeasurementUnavailable, err)
	}

	values := obj.Value.Arr()
	if len(values) != 2*len(blocks) {
		return nil, fmt.Errorf("%w: got %d values for %d blocks", measure.ErrExtentCount, len(values), len(blocks))
	}

	extents := make([]Extent, len(blocks))
	for i, blk := range blocks {
		if blk.Kind == layout.KindPageBreak {
			continue
		}
		extents[i] = Extent{
			Flow:    round2(values[2*i].Num()),
			Leading: round2(values[2*i+1].Num()),
		}
	}
	m.log.Debug("measured blocks", zap.Int("blocks", len(blocks)))
	return extents, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ Measurer = (*browserMeasurer)(nil)
