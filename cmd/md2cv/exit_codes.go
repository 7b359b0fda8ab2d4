package main

import (
	"context"
	"errors"
	"os"

	md2cv "github.com/alnah/go-md2cv"
	"github.com/alnah/go-md2cv/internal/config"
	"github.com/alnah/go-md2cv/internal/hints"
)

// Exit codes for md2cv CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, front matter or style
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if md2cv.IsBrowserError(err) ||
		errors.Is(err, md2cv.ErrMeasurementUnavailable) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrTooManyArgs) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, md2cv.ErrEmptyMarkdown) ||
		errors.Is(err, md2cv.ErrFrontMatter) ||
		isStyleError(err) ||
		errors.Is(err, md2cv.ErrStyleNotFound) ||
		errors.Is(err, md2cv.ErrTemplateSetNotFound) ||
		errors.Is(err, md2cv.ErrIncompleteTemplateSet) ||
		errors.Is(err, md2cv.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}

// isStyleError reports style configuration validation failures.
func isStyleError(err error) bool {
	return errors.Is(err, md2cv.ErrInvalidPaper) ||
		errors.Is(err, md2cv.ErrInvalidMargin) ||
		errors.Is(err, md2cv.ErrInvalidFontSize) ||
		errors.Is(err, md2cv.ErrInvalidLineHeight) ||
		errors.Is(err, md2cv.ErrInvalidThemeColor) ||
		errors.Is(err, md2cv.ErrInvalidFont) ||
		errors.Is(err, md2cv.ErrInvalidGeometry)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var notFound *config.NotFoundError
	switch {
	case md2cv.IsBrowserError(err), errors.Is(err, md2cv.ErrMeasurementUnavailable):
		return hints.ForBrowserConnect(hints.CurrentEnvironment())
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.As(err, &notFound):
		return hints.ForConfigNotFound(notFound.Tried)
	case errors.Is(err, md2cv.ErrTemplateSetNotFound):
		return hints.ForTemplateNotFound(md2cv.TemplateNames())
	case errors.Is(err, md2cv.ErrFrontMatter):
		return hints.ForFrontMatter()
	case isStyleError(err):
		return hints.ForStyle()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
