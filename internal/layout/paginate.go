package layout

import "strings"

// Page is an ordered run of blocks that fits the geometry's available height,
// unless it holds a single block taller than a page. Zero-height blocks such as
// forced breaks may share an oversize page.
type Page struct {
	Index    int      `json:"index"`
	Blocks   []Block  `json:"blocks"`
	Used     float64  `json:"used"`
	Oversize bool     `json:"oversize,omitempty"`
	Geometry Geometry `json:"geometry"`
}

// Markup concatenates the markup of the page's blocks in order.
func (p Page) Markup() string {
	var b strings.Builder
	for _, blk := range p.Blocks {
		b.WriteString(blk.Markup)
	}
	return b.String()
}

// Paginate distributes blocks over pages greedily, in order, without
// backtracking. A block that does not fit on the current page moves to a new
// page and is charged its leading height there. A forced break opens a new
// page unless nothing has been placed yet. The final page is always emitted,
// so an empty block list yields one empty page.
func Paginate(blocks []Block, g Geometry) ([]Page, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	available := g.AvailableHeight()
	pages := make([]Page, 0, 1)
	page := Page{Geometry: g}
	running := 0.0

	commit := func() {
		page.Used = running
		page.Oversize = running > available
		page.Index = len(pages)
		pages = append(pages, page)
		page = Page{Geometry: g}
		running = 0
	}

	for _, blk := range blocks {
		if blk.ForcedBreak() && running > 0 {
			commit()
		}

		h := blk.Height
		if len(page.Blocks) == 0 {
			h = blk.Leading()
		} else {
			h += g.Spacing
		}

		if running+h > available && running > 0 {
			commit()
			running = blk.Leading()
		} else {
			running += h
		}
		page.Blocks = append(page.Blocks, blk)
	}
	commit()

	return pages, nil
}

// Flatten concatenates the blocks of all pages in order.
func Flatten(pages []Page) []Block {
	var out []Block
	for _, p := range pages {
		out = append(out, p.Blocks...)
	}
	return out
}
