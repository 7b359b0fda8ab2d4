package styles

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"go.uber.org/zap"

	"github.com/alnah/go-md2cv/internal/assets"
)

// HighlightStyle is the chroma style whose classes the pipeline emits.
const HighlightStyle = "github"

// Sheet is a composed stylesheet. Layers are applied in field order.
type Sheet struct {
	Base   string `json:"base"`
	Config string `json:"config"`
	Custom string `json:"custom"`
}

// CSS returns the layers concatenated in application order.
func (s Sheet) CSS() string {
	var b strings.Builder
	for _, layer := range []string{s.Base, s.Config, s.Custom} {
		if strings.TrimSpace(layer) == "" {
			continue
		}
		b.WriteString(layer)
		if !strings.HasSuffix(layer, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Manager composes sheets for one rendering context.
type Manager struct {
	base string
	log  *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithBaseCSS replaces the built-in base layer.
func WithBaseCSS(css string) ManagerOption {
	return func(m *Manager) {
		m.base = css
	}
}

// WithLogger sets the logger used for asset and highlight failures.
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a Manager. Without WithBaseCSS the base layer is the
// embedded base style followed by the code highlighting classes.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.Named("styles")
	if m.base == "" {
		m.base = defaultBase(m.log)
	}
	return m
}

// Compose builds the sheet for cfg and the user's custom CSS.
func (m *Manager) Compose(cfg Config, custom string) Sheet {
	return Sheet{
		Base:   m.base,
		Config: ConfigCSS(cfg),
		Custom: custom,
	}
}

// ConfigCSS renders the configuration layer.
func ConfigCSS(cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* {\n  font-family: %s;\n  line-height: %s;\n  font-size: %spx;\n}\n",
		cfg.FontFamily(), num(cfg.LineHeight), num(cfg.FontSize))
	fmt.Fprintf(&b, "p,\nli {\n  margin-bottom: %spx;\n}\n", num(cfg.ParagraphSpace))
	fmt.Fprintf(&b, "h2,\nh3 {\n  margin-bottom: %spx;\n}\n", num(cfg.ParagraphSpace))
	fmt.Fprintf(&b, ".resume-header h1 {\n  color: %s;\n}\n", cfg.ThemeColor)
	fmt.Fprintf(&b, "h2 {\n  border-bottom: 1px solid %s;\n}\n", cfg.ThemeColor)
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var (
	baseOnce sync.Once
	baseCSS  string
)

func defaultBase(log *zap.Logger) string {
	baseOnce.Do(func() {
		css, err := assets.LoadStyle(assets.BaseStyleName)
		if err != nil {
			log.Warn("base style unavailable", zap.Error(err))
		}
		baseCSS = css + HighlightCSS()
	})
	return baseCSS
}

// HighlightCSS returns the chroma classes for fenced code blocks.
func HighlightCSS() string {
	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, chromastyles.Get(HighlightStyle)); err != nil {
		return ""
	}
	return b.String()
}
