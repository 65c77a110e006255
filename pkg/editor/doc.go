// Package editor holds the page editing state and the controller that mutates
// it.
//
// A Session owns the instance order, the hidden set and per-instance content.
// Structural operations (add, delete, hide, reorder) snapshot the order and
// hidden set before mutating, so they can be undone; content edits are not
// historied. Sessions are not safe for concurrent use: drive them from one
// goroutine, the way internal/server does with its event loop.
package editor
