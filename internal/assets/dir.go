package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirLoader loads assets from a directory on disk, laid out like the
// built-in tree. Files resolving outside the directory, symlinks
// included, are refused with ErrPathTraversal.
type DirLoader struct {
	treeLoader
	root string
}

// NewDirLoader opens dir. It fails with ErrInvalidBasePath unless dir is
// a readable directory.
func NewDirLoader(dir string) (*DirLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}
	info, err := os.Stat(root)
	switch {
	case os.IsNotExist(err):
		return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidBasePath, root)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidBasePath, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	d := &DirLoader{root: root}
	d.treeLoader = treeLoader{fsys: os.DirFS(root), check: d.contain}
	return d, nil
}

// Root returns the resolved directory.
func (d *DirLoader) Root() string { return d.root }

// contain fails when name, after symlink resolution, leaves the root.
// Paths that do not exist yet are judged lexically.
func (d *DirLoader) contain(name string) error {
	p := filepath.Join(d.root, filepath.FromSlash(name))
	if real, err := filepath.EvalSymlinks(p); err == nil {
		p = real
	}
	rel, err := filepath.Rel(d.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}
	return nil
}

var _ AssetLoader = (*DirLoader)(nil)
