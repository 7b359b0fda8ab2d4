package assets

import "embed"

//go:embed styles templates
var builtin embed.FS

// EmbeddedLoader loads the assets compiled into the binary.
type EmbeddedLoader struct {
	treeLoader
}

func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{treeLoader{fsys: builtin}}
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
