// Package layout splits measured content blocks into fixed-size pages.
//
// The paginator is a pure function of its inputs: blocks carry the heights a
// measurer computed for them, so the same blocks and geometry always produce
// the same pages.
package layout

import "fmt"

// BlockKind identifies the structural kind of a top-level content block.
// The set is closed; renderers map every node to exactly one kind.
type BlockKind int

// Block kinds.
const (
	KindRaw BlockKind = iota
	KindHeader
	KindHeading
	KindParagraph
	KindList
	KindDefinitionList
	KindPageBreak
)

// String returns the lower-case kind name used in JSON output and logs.
func (k BlockKind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindHeader:
		return "header"
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindList:
		return "list"
	case KindDefinitionList:
		return "definitionList"
	case KindPageBreak:
		return "pageBreak"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Block is an atomic unit of rendered content. It is never subdivided.
type Block struct {
	Kind   BlockKind `json:"kind"`
	Markup string    `json:"markup"`

	// Height is the occupied vertical extent, margins included, when the
	// block follows other content on a page.
	Height float64 `json:"height"`

	// LeadingHeight is the extent when the block opens a page. Zero means
	// the block measures the same in both positions.
	LeadingHeight float64 `json:"leadingHeight,omitempty"`
}

// ForcedBreak reports whether the block must start a new page.
func (b Block) ForcedBreak() bool {
	return b.Kind == KindPageBreak
}

// Leading returns the height to use when the block is first on a page.
func (b Block) Leading() float64 {
	if b.LeadingHeight > 0 {
		return b.LeadingHeight
	}
	return b.Height
}
