// Package form binds section schemas to instance content.
//
// The Engine turns field definitions into Controls carrying the current value
// (stored value, else the schema default), and writes edits back with Set.
// Every write returns a new Content map; array fields are copied on write so
// previously returned content is never mutated.
package form
