package editor

import "errors"

var (
	// ErrNothingToUndo is returned by History.Undo on an empty undo stack.
	ErrNothingToUndo = errors.New("editor: nothing to undo")
	// ErrNothingToRedo is returned by History.Redo on an empty redo stack.
	ErrNothingToRedo = errors.New("editor: nothing to redo")
	// ErrInvalidTransition is logged when a gesture is not valid in the
	// current controller mode.
	ErrInvalidTransition = errors.New("editor: invalid transition")
	// ErrStaleInstance marks a reference to an instance that no longer exists.
	ErrStaleInstance = errors.New("editor: stale instance id")
	// ErrIndexOutOfRange is logged for reorder gestures outside the order.
	ErrIndexOutOfRange = errors.New("editor: index out of range")
)
