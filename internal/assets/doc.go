// Package assets ships the stylesheets and starter resumes of md2cv and
// lets a directory on disk override them.
//
// An asset tree looks the same embedded or on disk:
//
//	styles/{name}.css           style layers (base, preview)
//	templates/{name}/resume.md  starter resume with front matter
//	templates/{name}/resume.css optional style layer for the starter
//
// EmbeddedLoader reads the built-in tree, DirLoader a directory, and Stack
// layers loaders so a custom directory shadows the built-ins name by name.
package assets
