// Package template defines the template engine seam the preview renderers
// depend on, so the pongo2-backed adapter can be swapped in tests.
package template
