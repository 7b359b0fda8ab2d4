// Package measure computes the occupied height of rendered content blocks.
//
// A Measurer receives the blocks of one rendering pass together with the
// Surface they are laid out on and returns one Extent per block, in order.
// Implementations live here (font metrics, caching) and in the md2cv root
// package (headless browser).
package measure

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-md2cv/internal/layout"
	"github.com/alnah/go-md2cv/internal/styles"
)

// ErrMeasurementUnavailable indicates the measurement surface is not ready.
// Callers retry on the next trigger instead of reporting it.
var ErrMeasurementUnavailable = errors.New("measurement surface unavailable")

// ErrExtentCount indicates a measurer returned the wrong number of extents.
var ErrExtentCount = errors.New("extent count mismatch")

// Surface is what blocks are measured against: the committed stylesheet,
// the configuration it was generated from and the page geometry.
type Surface struct {
	Sheet    styles.Sheet
	Config   styles.Config
	Geometry layout.Geometry
}

// Extent is the measured size of one block, margins included.
type Extent struct {
	// Flow is the height when the block follows other content.
	Flow float64 `json:"flow"`

	// Leading is the height when the block opens a page.
	Leading float64 `json:"leading"`
}

// Measurer returns one extent per block, in block order.
type Measurer interface {
	Measure(ctx context.Context, s Surface, blocks []layout.Block) ([]Extent, error)
}

// Blocks measures blocks with m and returns copies carrying the extents.
func Blocks(ctx context.Context, m Measurer, s Surface, blocks []layout.Block) ([]layout.Block, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	extents, err := m.Measure(ctx, s, blocks)
	if err != nil {
		return nil, err
	}
	return Apply(blocks, extents)
}

// Apply copies blocks and sets Height and LeadingHeight from extents.
func Apply(blocks []layout.Block, extents []Extent) ([]layout.Block, error) {
	if len(blocks) != len(extents) {
		return nil, fmt.Errorf("%w: %d blocks, %d extents", ErrExtentCount, len(blocks), len(extents))
	}
	out := make([]layout.Block, len(blocks))
	for i, b := range blocks {
		b.Height = extents[i].Flow
		b.LeadingHeight = 0
		if extents[i].Leading != extents[i].Flow {
			b.LeadingHeight = extents[i].Leading
		}
		out[i] = b
	}
	return out, nil
}
