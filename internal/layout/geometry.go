package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGeometry indicates a page with no room for content.
var ErrInvalidGeometry = errors.New("invalid page geometry")

// PixelsPerMM converts millimetres to CSS pixels (96 px per inch).
const PixelsPerMM = 96 / 25.4

// Paper is a physical paper size in millimetres.
type Paper struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

// Paper presets.
var (
	PaperA4     = Paper{Name: "A4", WidthMM: 210, HeightMM: 297}
	PaperLetter = Paper{Name: "letter", WidthMM: 215.9, HeightMM: 279.4}
	PaperLegal  = Paper{Name: "legal", WidthMM: 215.9, HeightMM: 355.6}
)

// LookupPaper returns the preset for name (case-insensitive).
func LookupPaper(name string) (Paper, bool) {
	switch strings.ToLower(name) {
	case "a4":
		return PaperA4, true
	case "letter":
		return PaperLetter, true
	case "legal":
		return PaperLegal, true
	}
	return Paper{}, false
}

// Geometry holds page dimensions and margins in CSS pixels.
type Geometry struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	MarginTop    float64 `json:"marginTop"`
	MarginBottom float64 `json:"marginBottom"`
	MarginLeft   float64 `json:"marginLeft"`
	MarginRight  float64 `json:"marginRight"`

	// Spacing is added between consecutive blocks on the same page.
	Spacing float64 `json:"spacing,omitempty"`
}

// NewGeometry builds a geometry from a paper preset with symmetric margins.
func NewGeometry(p Paper, marginV, marginH float64) Geometry {
	return Geometry{
		Width:        p.WidthMM * PixelsPerMM,
		Height:       p.HeightMM * PixelsPerMM,
		MarginTop:    marginV,
		MarginBottom: marginV,
		MarginLeft:   marginH,
		MarginRight:  marginH,
	}
}

// AvailableHeight is the vertical room for content on one page.
func (g Geometry) AvailableHeight() float64 {
	return g.Height - g.MarginTop - g.MarginBottom
}

// ContentWidth is the horizontal room for content on one page.
func (g Geometry) ContentWidth() float64 {
	return g.Width - g.MarginLeft - g.MarginRight
}

// Validate checks that the geometry leaves room for content.
func (g Geometry) Validate() error {
	if g.AvailableHeight() <= 0 {
		return fmt.Errorf("%w: available height %.2f", ErrInvalidGeometry, g.AvailableHeight())
	}
	if g.ContentWidth() <= 0 {
		return fmt.Errorf("%w: content width %.2f", ErrInvalidGeometry, g.ContentWidth())
	}
	if g.Spacing < 0 {
		return fmt.Errorf("%w: negative spacing %.2f", ErrInvalidGeometry, g.Spacing)
	}
	return nil
}
