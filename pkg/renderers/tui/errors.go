package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNotEditing is returned by FormEditor.Edit when the session is not
	// editing the requested instance.
	ErrNotEditing = errors.New("tui: instance is not being edited")
)
