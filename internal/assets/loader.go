package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// Built-in asset names.
const (
	// BaseStyleName is the layer every rendering starts from.
	BaseStyleName = "base"

	// PreviewStyleName decorates pages on screen (page shadows, gaps).
	PreviewStyleName = "preview"

	// DefaultTemplateSetName is the starter resume printed by "md2cv template".
	DefaultTemplateSetName = "default"
)

// MaxAssetNameLength bounds asset names taken from flags and config files.
const MaxAssetNameLength = 64

// Layout of an asset tree.
const (
	stylesDir            = "styles"
	templatesDir         = "templates"
	templateMarkdownFile = "resume.md"
	templateCSSFile      = "resume.css"
)

// TemplateSet is a starter resume: markdown with front matter and the
// custom style layer written for it.
type TemplateSet struct {
	Name     string
	Markdown string // resume.md
	CSS      string // resume.css, empty when the template ships none
}

// AssetLoader loads styles and resume templates by name.
type AssetLoader interface {
	// LoadStyle returns the stylesheet name.css, or ErrStyleNotFound.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet returns the template directory name, or
	// ErrTemplateSetNotFound.
	LoadTemplateSet(name string) (*TemplateSet, error)

	// TemplateNames lists loadable templates in lexical order.
	TemplateNames() []string
}

// ValidateAssetName rejects names that are empty, longer than
// MaxAssetNameLength, or that contain separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrInvalidAssetName, len(name), MaxAssetNameLength)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// treeLoader reads an asset tree laid out as styles/ and templates/.
// check, when set, vets every slash-separated path before it is opened.
type treeLoader struct {
	fsys  fs.FS
	check func(name string) error
}

// read returns the file at name. ok is false when it does not exist.
func (l treeLoader) read(name string) (data string, ok bool, err error) {
	if l.check != nil {
		if err := l.check(name); err != nil {
			return "", false, err
		}
	}
	b, err := fs.ReadFile(l.fsys, name)
	switch {
	case err == nil:
		return string(b), true, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("%w: %s: %v", ErrAssetRead, name, err)
	}
}

func (l treeLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	css, ok, err := l.read(path.Join(stylesDir, name+".css"))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return css, nil
}

func (l treeLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	dir := path.Join(templatesDir, name)
	if l.check != nil {
		if err := l.check(dir); err != nil {
			return nil, err
		}
	}
	if info, err := fs.Stat(l.fsys, dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}

	md, ok, err := l.read(path.Join(dir, templateMarkdownFile))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrIncompleteTemplateSet, name)
	}
	css, _, err := l.read(path.Join(dir, templateCSSFile))
	if err != nil {
		return nil, err
	}
	return &TemplateSet{Name: name, Markdown: md, CSS: css}, nil
}

// TemplateNames lists the template directories holding a resume.md.
func (l treeLoader) TemplateNames() []string {
	entries, err := fs.ReadDir(l.fsys, templatesDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || ValidateAssetName(e.Name()) != nil {
			continue
		}
		if _, ok, err := l.read(path.Join(templatesDir, e.Name(), templateMarkdownFile)); err == nil && ok {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in style by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplateSet loads a built-in resume template by name.
func LoadTemplateSet(name string) (*TemplateSet, error) {
	return defaultLoader.LoadTemplateSet(name)
}

// TemplateNames lists the built-in resume templates.
func TemplateNames() []string {
	return defaultLoader.TemplateNames()
}
