package editor

import (
	"slices"
)

// Instance is one placement of a section type on the page.
type Instance struct {
	ID   InstanceID `json:"id"`
	Type string     `json:"type"`
}

// State is the unit captured by history: the instance order and the hidden
// set. Content is not part of it.
type State struct {
	Order  []Instance   `json:"order"`
	Hidden []InstanceID `json:"hidden"`
}

// Clone returns a copy sharing no slices with s.
func (s State) Clone() State {
	return State{
		Order:  append([]Instance{}, s.Order...),
		Hidden: append([]InstanceID{}, s.Hidden...),
	}
}

// Equal compares order element-wise and hidden as a set.
func (s State) Equal(other State) bool {
	if !slices.Equal(s.Order, other.Order) {
		return false
	}
	a := slices.Clone(s.Hidden)
	b := slices.Clone(other.Hidden)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// IsHidden reports whether id is in the hidden set.
func (s State) IsHidden(id InstanceID) bool {
	return slices.Contains(s.Hidden, id)
}

func (s State) references(id InstanceID) bool {
	for _, inst := range s.Order {
		if inst.ID == id {
			return true
		}
	}
	return false
}
