package editor

import "slices"

// Move relocates the element at from so it ends up at index to, shifting the
// elements in between. It returns the input unchanged and false when from
// equals to or either index is out of range. The input slice is not modified.
func Move[T any](order []T, from, to int) ([]T, bool) {
	if from == to || from < 0 || to < 0 || from >= len(order) || to >= len(order) {
		return order, false
	}
	next := slices.Clone(order)
	item := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, item)
	return next, true
}

// DragSession tracks one drag gesture. Only Drop has a durable effect; hover
// updates are presentational.
type DragSession struct {
	From    int
	Over    int
	HasOver bool
}

// Target returns the drop index and whether the gesture has one.
func (d DragSession) Target() (int, bool) {
	return d.Over, d.HasOver
}
