// Package config loads the YAML configuration file of the md2cv CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-md2cv/internal/styles"
	"github.com/alnah/go-md2cv/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096      // Filesystem paths
	MaxCSSLength      = 64 * 1024 // Inline stylesheet
	MaxPaperLength    = 10        // "letter", "A4", "legal"
	MaxColorLength    = 7         // "#rrggbb"
	MaxFontNameLength = 100       // Font display name
	MaxAddrLength     = 255       // host:port
	MaxDurationLength = 20        // "1m30s"
)

// Accepted enumerations. Empty selects the engine default.
var (
	frontMatterPolicies = []string{"", "error", "last", "empty"}
	crossRefPlacements  = []string{"", "trailing", "inplace", "in-place"}
	measureEngines      = []string{"", "browser", "metrics"}
)

// Config holds all configuration for resume rendering.
type Config struct {
	Style  StyleConfig  `yaml:"style"`
	CSS    CSSConfig    `yaml:"css"`
	Render RenderConfig `yaml:"render"`
	Output OutputConfig `yaml:"output"`
	Serve  ServeConfig  `yaml:"serve"`
	Assets AssetsConfig `yaml:"assets"`
}

// StyleConfig overrides style settings. Nil or empty fields keep the default.
type StyleConfig struct {
	Paper          string   `yaml:"paper"`
	MarginV        *float64 `yaml:"marginV"`
	MarginH        *float64 `yaml:"marginH"`
	LineHeight     *float64 `yaml:"lineHeight"`
	ParagraphSpace *float64 `yaml:"paragraphSpace"`
	FontSize       *float64 `yaml:"fontSize"`
	ThemeColor     string   `yaml:"themeColor"`
	FontEN         Font     `yaml:"fontEN"`
	FontCJK        Font     `yaml:"fontCJK"`
}

// Font overrides one typeface.
type Font struct {
	Name       string `yaml:"name"`
	FontFamily string `yaml:"fontFamily"`
}

// CSSConfig defines the custom stylesheet layer.
type CSSConfig struct {
	File   string `yaml:"file"`   // Path to a .css file
	Inline string `yaml:"inline"` // Applied after File
}

// RenderConfig defines engine behavior.
type RenderConfig struct {
	FrontMatter string `yaml:"frontMatter"` // "error", "last", "empty"
	CrossRefs   string `yaml:"crossRefs"`   // "trailing", "inplace"
	Engine      string `yaml:"engine"`      // "browser", "metrics"
	Timeout     string `yaml:"timeout"`     // Go duration, e.g. "30s"
	CacheTTL    string `yaml:"cacheTTL"`    // Go duration, "0" disables
	MathAssets  string `yaml:"mathAssets"`  // KaTeX base URL, "none" disables
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = same as source
}

// ServeConfig defines the preview server and watch loop.
type ServeConfig struct {
	Addr     string `yaml:"addr"`     // Listen address, e.g. "127.0.0.1:8080"
	Debounce string `yaml:"debounce"` // Go duration between edit and re-render
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks field lengths, enumerations and durations.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"style.paper", c.Style.Paper, MaxPaperLength},
		{"style.themeColor", c.Style.ThemeColor, MaxColorLength},
		{"style.fontEN.name", c.Style.FontEN.Name, MaxFontNameLength},
		{"style.fontEN.fontFamily", c.Style.FontEN.FontFamily, styles.MaxFontFamilyLength},
		{"style.fontCJK.name", c.Style.FontCJK.Name, MaxFontNameLength},
		{"style.fontCJK.fontFamily", c.Style.FontCJK.FontFamily, styles.MaxFontFamilyLength},
		{"css.file", c.CSS.File, MaxPathLength},
		{"css.inline", c.CSS.Inline, MaxCSSLength},
		{"render.timeout", c.Render.Timeout, MaxDurationLength},
		{"render.cacheTTL", c.Render.CacheTTL, MaxDurationLength},
		{"render.mathAssets", c.Render.MathAssets, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"serve.addr", c.Serve.Addr, MaxAddrLength},
		{"serve.debounce", c.Serve.Debounce, MaxDurationLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	enums := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"render.frontMatter", c.Render.FrontMatter, frontMatterPolicies},
		{"render.crossRefs", c.Render.CrossRefs, crossRefPlacements},
		{"render.engine", c.Render.Engine, measureEngines},
	}
	for _, e := range enums {
		if !slices.Contains(e.allowed, strings.ToLower(e.value)) {
			return fmt.Errorf("%w: %s %q (expected %s)", ErrInvalidValue, e.field, e.value, strings.Join(e.allowed[1:], ", "))
		}
	}

	durations := []struct {
		field string
		value string
	}{
		{"render.timeout", c.Render.Timeout},
		{"render.cacheTTL", c.Render.CacheTTL},
		{"serve.debounce", c.Serve.Debounce},
	}
	for _, d := range durations {
		if _, err := parseDuration(d.value); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, d.field, d.value, err)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// parseDuration parses a Go duration; empty yields zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}

// Timeout returns render.timeout, or zero when unset.
func (c *Config) Timeout() time.Duration {
	d, _ := parseDuration(c.Render.Timeout)
	return d
}

// CacheTTL returns render.cacheTTL and whether it was set.
func (c *Config) CacheTTL() (time.Duration, bool) {
	d, _ := parseDuration(c.Render.CacheTTL)
	return d, c.Render.CacheTTL != ""
}

// MathAssets returns the KaTeX base URL and whether render.mathAssets was
// set. "none" yields an empty URL, which turns typesetting off.
func (c *Config) MathAssets() (string, bool) {
	v := strings.TrimSpace(c.Render.MathAssets)
	if strings.EqualFold(v, "none") {
		return "", true
	}
	return v, v != ""
}

// Debounce returns serve.debounce, or zero when unset.
func (c *Config) Debounce() time.Duration {
	d, _ := parseDuration(c.Serve.Debounce)
	return d
}

// ApplyStyle overlays the configured style fields onto base.
func (c *Config) ApplyStyle(base styles.Config) styles.Config {
	s := c.Style
	if s.Paper != "" {
		base.Paper = s.Paper
	}
	if s.ThemeColor != "" {
		base.ThemeColor = s.ThemeColor
	}
	for _, f := range []struct {
		src *float64
		dst *float64
	}{
		{s.MarginV, &base.MarginV},
		{s.MarginH, &base.MarginH},
		{s.LineHeight, &base.LineHeight},
		{s.ParagraphSpace, &base.ParagraphSpace},
		{s.FontSize, &base.FontSize},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if s.FontEN != (Font{}) {
		base.FontEN = styles.Font{Name: s.FontEN.Name, FontFamily: s.FontEN.FontFamily}
	}
	if s.FontCJK != (Font{}) {
		base.FontCJK = styles.Font{Name: s.FontCJK.Name, FontFamily: s.FontCJK.FontFamily}
	}
	return base
}

// DefaultConfig returns a neutral configuration that keeps every default.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yamlutil.DecodeStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Relative paths in the file resolve against the file's directory.
	dir := filepath.Dir(configPath)
	cfg.CSS.File = resolveRelative(dir, cfg.CSS.File)
	cfg.Assets.BasePath = resolveRelative(dir, cfg.Assets.BasePath)

	return &cfg, nil
}

func resolveRelative(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// userConfigDir is replaced in tests.
var userConfigDir = os.UserConfigDir

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-md2cv/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if dir, err := userConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(dir, "go-md2cv", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Tried: triedPaths}
}

// NotFoundError lists the locations searched for a named config.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

// Unwrap makes errors.Is(err, ErrConfigNotFound) hold.
func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
