// Package fileutil holds the file helpers shared by the engine and the CLI.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadExtension reports an extension unusable in a temp file pattern.
var ErrBadExtension = errors.New("invalid file extension")

// WriteTempFile stores content in a new file ending in ".ext", for a
// browser to load by URL. cleanup removes the file.
func WriteTempFile(content, ext string) (path string, cleanup func(), err error) {
	if ext == "" || strings.ContainsAny(ext, "/\\.\x00") {
		return "", nil, fmt.Errorf("%w: %q", ErrBadExtension, ext)
	}

	f, err := os.CreateTemp("", "md2cv-*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	_, err = f.WriteString(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return path, cleanup, nil
}

// WriteFile replaces path with data, creating missing parent directories.
// The data goes to a sibling temp file first and is renamed into place, so
// a preview reloading path never reads a half-written resume.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0o600)
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FileExists reports whether path names something other than a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsCSS reports whether s is a stylesheet rather than a file name.
func IsCSS(s string) bool {
	return strings.Contains(s, "{")
}

// ReplaceExt swaps the extension of path for ext, appending ext to a path
// without one.
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
