package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	md2cv "github.com/alnah/go-md2cv"
	"github.com/alnah/go-md2cv/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrNoInput          = errors.New("no input specified")
	ErrTooManyArgs      = errors.New("too many arguments")
	ErrReadCSS          = errors.New("failed to read CSS file")
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrWriteOutput      = errors.New("failed to write output file")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
)

// inputPath returns the single markdown file named in args.
func inputPath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrNoInput
	case 1:
	default:
		return "", fmt.Errorf("%w: expected one markdown file, got %d", ErrTooManyArgs, len(args))
	}
	if err := validateMarkdownExtension(args[0]); err != nil {
		return "", err
	}
	return args[0], nil
}

// validateMarkdownExtension checks the file has a markdown extension.
func validateMarkdownExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: %s", ErrInvalidExtension, path)
	}
	return nil
}

// readInput loads the markdown at path into an engine input.
func readInput(path string, s *settings) (md2cv.Input, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided input
	if err != nil {
		return md2cv.Input{}, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return md2cv.Input{}, fmt.Errorf("%w: %s", md2cv.ErrEmptyMarkdown, path)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		dir = filepath.Dir(path)
	}

	style := s.style
	return md2cv.Input{
		Markdown:  string(data),
		Style:     &style,
		CSS:       s.css,
		SourceDir: dir,
	}, nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := fileutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// outputPath resolves where a command writes its result.
// An explicit file wins. A directory (explicit, configured or the input's)
// receives a file named after the resume owner, or after the input.
func outputPath(flagOutput, outputDir, input string, res *md2cv.Result, ext string) string {
	if flagOutput != "" {
		if info, err := os.Stat(flagOutput); err != nil || !info.IsDir() {
			if !strings.HasSuffix(flagOutput, string(filepath.Separator)) {
				return flagOutput
			}
		}
		outputDir = flagOutput
	}
	if outputDir == "" {
		outputDir = filepath.Dir(input)
	}
	return filepath.Join(outputDir, outputName(input, res, ext))
}

// outputName slugs the front-matter name, falling back to the input name.
func outputName(input string, res *md2cv.Result, ext string) string {
	if res != nil {
		if name := slug.Make(res.FrontMatter.Name); name != "" {
			return name + ext
		}
	}
	return fileutil.ReplaceExt(filepath.Base(input), ext)
}
