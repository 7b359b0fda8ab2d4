package md2cv

import (
	"errors"

	"github.com/alnah/go-md2cv/internal/assets"
	"github.com/alnah/go-md2cv/internal/frontmatter"
	"github.com/alnah/go-md2cv/internal/layout"
	"github.com/alnah/go-md2cv/internal/measure"
	"github.com/alnah/go-md2cv/internal/styles"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")
	ErrNoPages       = errors.New("no pages to export")
	ErrEngineClosed  = errors.New("engine is closed")
	ErrSessionClosed = errors.New("session is closed")
	ErrInvalidRootID = errors.New("invalid thumbnail root id")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Front matter errors.
	ErrFrontMatter = frontmatter.ErrFrontMatter

	// Measurement errors.
	ErrMeasurementUnavailable = measure.ErrMeasurementUnavailable

	// Style configuration validation errors.
	ErrInvalidPaper      = styles.ErrInvalidPaper
	ErrInvalidMargin     = styles.ErrInvalidMargin
	ErrInvalidFontSize   = styles.ErrInvalidFontSize
	ErrInvalidLineHeight = styles.ErrInvalidLineHeight
	ErrInvalidThemeColor = styles.ErrInvalidThemeColor
	ErrInvalidFont       = styles.ErrInvalidFont
	ErrInvalidGeometry   = layout.ErrInvalidGeometry

	// Asset loading errors.
	ErrStyleNotFound         = assets.ErrStyleNotFound
	ErrTemplateSetNotFound   = assets.ErrTemplateSetNotFound
	ErrIncompleteTemplateSet = assets.ErrIncompleteTemplateSet
	ErrInvalidAssetPath      = errors.New("invalid asset path")
)
