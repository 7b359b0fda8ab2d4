package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	md2cv "github.com/alnah/go-md2cv"
	"github.com/alnah/go-md2cv/internal/config"
	"github.com/alnah/go-md2cv/internal/fileutil"
)

// defaultAddr is the preview server address when none is configured.
const defaultAddr = "127.0.0.1:8080"

// settings is the resolved configuration of one command run.
type settings struct {
	cfg       *config.Config
	style     md2cv.StyleConfiguration
	css       string
	opts      []md2cv.Option
	debounce  time.Duration
	addr      string
	outputDir string
	log       *zap.Logger
}

// resolveSettings merges defaults, config file, environment and flags.
// Priority: CLI flags > env vars > config file > defaults.
func resolveSettings(f *cmdFlags, env *Environment) (*settings, error) {
	envCfg := loadEnvConfig()
	if !f.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg := config.DefaultConfig()
	name := f.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(f, cfg)

	// Flags bypass the file validation above.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	css, err := resolveCSS(cfg)
	if err != nil {
		return nil, err
	}

	policy, err := md2cv.ParseFrontMatterPolicy(cfg.Render.FrontMatter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}
	placement, err := md2cv.ParseCrossRefPlacement(cfg.Render.CrossRefs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}
	engine, err := md2cv.ParseMeasureEngine(cfg.Render.Engine)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}

	log := newLogger(env.Stderr, f.common.verbose, f.common.quiet)

	opts := []md2cv.Option{
		md2cv.WithLogger(log),
		md2cv.WithFrontMatterPolicy(policy),
		md2cv.WithCrossRefPlacement(placement),
		md2cv.WithMeasureEngine(engine),
	}
	if t := cfg.Timeout(); t > 0 {
		opts = append(opts, md2cv.WithTimeout(t))
	}
	if ttl, set := cfg.CacheTTL(); set {
		opts = append(opts, md2cv.WithCacheTTL(ttl))
	}
	if base, set := cfg.MathAssets(); set {
		opts = append(opts, md2cv.WithMathAssets(base))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, md2cv.WithAssetPath(cfg.Assets.BasePath))
	}

	addr := cfg.Serve.Addr
	if addr == "" {
		addr = defaultAddr
	}

	return &settings{
		cfg:       cfg,
		style:     cfg.ApplyStyle(md2cv.DefaultStyleConfiguration()),
		css:       css,
		opts:      opts,
		debounce:  cfg.Debounce(),
		addr:      addr,
		outputDir: cfg.Output.DefaultDir,
		log:       log,
	}, nil
}

// mergeFlags copies explicitly set CLI flags into cfg (CLI wins).
func mergeFlags(f *cmdFlags, cfg *config.Config) {
	set := f.set
	if set == nil {
		set = func(string) bool { return false }
	}

	if set("paper") {
		cfg.Style.Paper = f.style.paper
	}
	if set("theme-color") {
		cfg.Style.ThemeColor = f.style.themeColor
	}
	floats := []struct {
		name string
		val  float64
		dst  **float64
	}{
		{"margin-v", f.style.marginV, &cfg.Style.MarginV},
		{"margin-h", f.style.marginH, &cfg.Style.MarginH},
		{"font-size", f.style.fontSize, &cfg.Style.FontSize},
		{"line-height", f.style.lineHeight, &cfg.Style.LineHeight},
		{"paragraph-space", f.style.paragraphSpace, &cfg.Style.ParagraphSpace},
	}
	for _, fl := range floats {
		if set(fl.name) {
			v := fl.val
			*fl.dst = &v
		}
	}

	// --css replaces the configured layer.
	if set("css") {
		cfg.CSS = config.CSSConfig{}
		if fileutil.IsCSS(f.style.css) {
			cfg.CSS.Inline = f.style.css
		} else {
			cfg.CSS.File = f.style.css
		}
	}

	if set("front-matter") {
		cfg.Render.FrontMatter = f.engine.frontMatter
	}
	if set("cross-refs") {
		cfg.Render.CrossRefs = f.engine.crossRefs
	}
	if set("engine") {
		cfg.Render.Engine = f.engine.engine
	}
	if set("timeout") {
		cfg.Render.Timeout = f.engine.timeout
	}
	if set("asset-path") {
		cfg.Assets.BasePath = f.engine.assetPath
	}
	if set("addr") {
		cfg.Serve.Addr = f.serve.addr
	}
	if set("debounce") {
		cfg.Serve.Debounce = f.serve.debounce
	}
}

// resolveCSS reads the configured stylesheet file and appends inline CSS.
func resolveCSS(cfg *config.Config) (string, error) {
	var parts []string
	if cfg.CSS.File != "" {
		data, err := os.ReadFile(cfg.CSS.File) // #nosec G304 -- user-provided stylesheet
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
		}
		parts = append(parts, string(data))
	}
	if cfg.CSS.Inline != "" {
		parts = append(parts, cfg.CSS.Inline)
	}
	return strings.Join(parts, "\n"), nil
}

// newLogger builds a console logger for CLI diagnostics.
// Level: debug with verbose, error with quiet, info otherwise.
func newLogger(w io.Writer, verbose, quiet bool) *zap.Logger {
	level := zapcore.InfoLevel
	switch {
	case quiet:
		level = zapcore.ErrorLevel
	case verbose:
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
