package styles

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-md2cv/internal/layout"
)

// Sentinel errors for style configuration validation.
var (
	ErrInvalidPaper      = errors.New("invalid paper")
	ErrInvalidMargin     = errors.New("invalid margin")
	ErrInvalidFontSize   = errors.New("invalid font size")
	ErrInvalidLineHeight = errors.New("invalid line height")
	ErrInvalidThemeColor = errors.New("invalid theme color")
	ErrInvalidFont       = errors.New("invalid font")
)

// MaxFontFamilyLength bounds font-family values.
const MaxFontFamilyLength = 200

var hexColor = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Font names a typeface and the CSS font-family stack that selects it.
type Font struct {
	Name       string `yaml:"name" json:"name"`
	FontFamily string `yaml:"fontFamily" json:"fontFamily"`
}

// Family returns FontFamily, falling back to the quoted Name.
func (f Font) Family() string {
	if f.FontFamily != "" {
		return f.FontFamily
	}
	if f.Name != "" {
		return `"` + f.Name + `"`
	}
	return ""
}

// Config is the user-facing style configuration of a resume.
// Lengths are CSS pixels.
type Config struct {
	MarginV        float64 `yaml:"marginV" json:"marginV"`
	MarginH        float64 `yaml:"marginH" json:"marginH"`
	LineHeight     float64 `yaml:"lineHeight" json:"lineHeight"`
	ParagraphSpace float64 `yaml:"paragraphSpace" json:"paragraphSpace"`
	ThemeColor     string  `yaml:"themeColor" json:"themeColor"`
	FontCJK        Font    `yaml:"fontCJK" json:"fontCJK"`
	FontEN         Font    `yaml:"fontEN" json:"fontEN"`
	FontSize       float64 `yaml:"fontSize" json:"fontSize"`
	Paper          string  `yaml:"paper" json:"paper"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MarginV:        30,
		MarginH:        30,
		LineHeight:     1.3,
		ParagraphSpace: 5,
		ThemeColor:     "#000000",
		FontCJK:        Font{Name: "HKST", FontFamily: "HKST"},
		FontEN:         Font{Name: "Times New Roman", FontFamily: `"Times New Roman", Times, serif`},
		FontSize:       15,
		Paper:          layout.PaperA4.Name,
	}
}

// Validate checks every field and returns the first problem found.
func (c Config) Validate() error {
	paper, ok := layout.LookupPaper(c.Paper)
	if !ok {
		return fmt.Errorf("%w: %q (expected A4, letter or legal)", ErrInvalidPaper, c.Paper)
	}
	if c.MarginV < 0 || c.MarginH < 0 {
		return fmt.Errorf("%w: margins must not be negative (vertical %.2f, horizontal %.2f)", ErrInvalidMargin, c.MarginV, c.MarginH)
	}
	g := layout.NewGeometry(paper, c.MarginV, c.MarginH)
	if err := g.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMargin, err)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidFontSize, c.FontSize)
	}
	if c.LineHeight <= 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidLineHeight, c.LineHeight)
	}
	if c.ParagraphSpace < 0 {
		return fmt.Errorf("%w: paragraph space %.2f", ErrInvalidMargin, c.ParagraphSpace)
	}
	if !hexColor.MatchString(c.ThemeColor) {
		return fmt.Errorf("%w: %q (expected #rgb or #rrggbb)", ErrInvalidThemeColor, c.ThemeColor)
	}
	for _, f := range []Font{c.FontEN, c.FontCJK} {
		if len(f.FontFamily) > MaxFontFamilyLength {
			return fmt.Errorf("%w: font family too long (%d characters, max %d)", ErrInvalidFont, len(f.FontFamily), MaxFontFamilyLength)
		}
		if strings.ContainsAny(f.FontFamily+f.Name, "{};<>") {
			return fmt.Errorf("%w: %q contains CSS delimiters", ErrInvalidFont, f.Name)
		}
	}
	return nil
}

// Geometry returns the page geometry for the configured paper and margins.
func (c Config) Geometry() (layout.Geometry, error) {
	if err := c.Validate(); err != nil {
		return layout.Geometry{}, err
	}
	paper, _ := layout.LookupPaper(c.Paper)
	return layout.NewGeometry(paper, c.MarginV, c.MarginH), nil
}

// FontFamily is the combined stack: Latin face first, CJK face as fallback.
func (c Config) FontFamily() string {
	var parts []string
	for _, f := range []Font{c.FontEN, c.FontCJK} {
		if fam := f.Family(); fam != "" {
			parts = append(parts, fam)
		}
	}
	return strings.Join(parts, ", ")
}
