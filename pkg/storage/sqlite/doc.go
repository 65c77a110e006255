// Package sqlite persists saved pages in a SQLite database through the pure
// Go modernc.org/sqlite driver. Store implements editor.Saver and keeps the
// latest payload of each page; there is no revision history.
package sqlite
