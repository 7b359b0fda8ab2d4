// Package styles composes and scopes the stylesheets applied to a resume.
//
// A Sheet carries three layers applied in order:
//
//	Base    - structural rules shipped with md2cv plus code highlighting
//	Config  - rules generated from a Config (fonts, spacing, theme color)
//	Custom  - the user's own CSS
//
// Later layers win on equal specificity. Isolate wraps content in a
// declarative shadow root so the sheet never leaks into the host document.
// Scoped rewrites every selector under a root id for contexts where a shadow
// root is not available, such as thumbnails embedded in a listing page.
package styles
