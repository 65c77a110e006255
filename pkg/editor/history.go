package editor

// History keeps undo and redo stacks of State snapshots.
type History struct {
	undo  []State
	redo  []State
	limit int
}

// NewHistory creates a history. A limit of zero or less keeps every snapshot.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Snapshot pushes state onto the undo stack and clears the redo stack.
// Callers pass the state as it was immediately before a structural mutation.
func (h *History) Snapshot(state State) {
	h.undo = append(h.undo, state.Clone())
	h.redo = nil

	// Evict the oldest snapshots past the limit.
	if h.limit > 0 && len(h.undo) > h.limit {
		excess := len(h.undo) - h.limit
		h.undo = append([]State(nil), h.undo[excess:]...)
	}
}

// Undo moves current onto the redo stack and returns the popped undo top.
func (h *History) Undo(current State) (State, error) {
	if len(h.undo) == 0 {
		return State{}, ErrNothingToUndo
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())
	return top.Clone(), nil
}

// Redo mirrors Undo.
func (h *History) Redo(current State) (State, error) {
	if len(h.redo) == 0 {
		return State{}, ErrNothingToRedo
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current.Clone())
	return top.Clone(), nil
}

// UndoCount returns the depth of the undo stack.
func (h *History) UndoCount() int { return len(h.undo) }

// RedoCount returns the depth of the redo stack.
func (h *History) RedoCount() int { return len(h.redo) }

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// references reports whether any stored snapshot contains id.
func (h *History) references(id InstanceID) bool {
	for _, state := range h.undo {
		if state.references(id) {
			return true
		}
	}
	for _, state := range h.redo {
		if state.references(id) {
			return true
		}
	}
	return false
}
