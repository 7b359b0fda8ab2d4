// Package pipeline implements the resume Markdown-to-blocks pipeline.
//
// This package handles the content stages of rendering:
//   - Markdown preprocessing (line normalization, definition markers, highlights)
//   - Markdown to HTML conversion via Goldmark with resume extensions
//     (math, citations, commands, icon shortcodes, page breaks)
//   - Sanitization against an HTML allow-list
//   - Splitting the document into typed top-level blocks
//   - Header assembly from front matter
//
// Measurement and pagination are handled by the measure and layout packages.
// Blocks leave this package without heights.
package pipeline
