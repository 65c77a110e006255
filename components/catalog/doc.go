// Package catalog serves and consumes the list of section types offered by
// the editor's picker.
//
// The handler responds to GET and HEAD requests with {"data": [...]}. Each
// entry carries the section type id as value, a display label, and whether
// the registry knows the type, so clients can grey out ids a remote list
// offers but the editor cannot build. Search uses the same filter as the
// in-editor picker. HTTPFeed is the matching client: it implements
// editor.CatalogFeed against any endpoint returning that shape (or a bare
// JSON array of ids).
package catalog
