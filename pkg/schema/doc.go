// Package schema holds the section schema registry: the static table mapping a
// section type to its declarative field list, its default content factory and
// the preview template the HTML renderer uses for it.
//
// Registries are built once (from the embedded built-in sections, YAML/JSON
// files or an OpenAPI document) and are read-only afterwards. Lookups hand out
// copies so callers can never mutate registered schemas or the default content
// of a section type.
package schema
