package assets

import (
	"errors"
	"slices"
)

// Stack consults loaders in order. The first loader holding an asset wins;
// a loader is skipped only when it reports the asset as not found, so read
// errors and traversal attempts surface instead of being masked by a
// fallback.
type Stack struct {
	loaders []AssetLoader
}

// NewStack layers the directory dir over the built-in assets. An empty dir
// yields the built-ins alone.
func NewStack(dir string) (*Stack, error) {
	if dir == "" {
		return StackOf(defaultLoader), nil
	}
	d, err := NewDirLoader(dir)
	if err != nil {
		return nil, err
	}
	return StackOf(d, defaultLoader), nil
}

// StackOf builds a Stack from loaders, highest priority first.
func StackOf(loaders ...AssetLoader) *Stack {
	return &Stack{loaders: loaders}
}

func (s *Stack) LoadStyle(name string) (string, error) {
	return first(s.loaders, ErrStyleNotFound, func(l AssetLoader) (string, error) {
		return l.LoadStyle(name)
	})
}

func (s *Stack) LoadTemplateSet(name string) (*TemplateSet, error) {
	return first(s.loaders, ErrTemplateSetNotFound, func(l AssetLoader) (*TemplateSet, error) {
		return l.LoadTemplateSet(name)
	})
}

// TemplateNames returns the union of every layer's templates.
func (s *Stack) TemplateNames() []string {
	var names []string
	for _, l := range s.loaders {
		names = append(names, l.TemplateNames()...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// first returns the result of the first loader not failing with notFound.
func first[T any](loaders []AssetLoader, notFound error, load func(AssetLoader) (T, error)) (T, error) {
	var zero T
	err := notFound
	for _, l := range loaders {
		v, lerr := load(l)
		if lerr == nil {
			return v, nil
		}
		if !errors.Is(lerr, notFound) {
			return zero, lerr
		}
		err = lerr
	}
	return zero, err
}

var _ AssetLoader = (*Stack)(nil)
