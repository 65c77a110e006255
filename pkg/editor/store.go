package editor

import (
	"maps"
	"slices"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// Instances owns the order and existence of section instances.
type Instances struct {
	ids   IDGenerator
	order []Instance
}

// NewInstances builds an empty store backed by ids.
func NewInstances(ids IDGenerator) *Instances {
	if ids == nil {
		ids = NewCounter(0)
	}
	return &Instances{ids: ids}
}

// Create appends a new instance of sectionType and returns its id.
func (s *Instances) Create(sectionType string) InstanceID {
	id := s.ids.Next()
	s.order = append(s.order, Instance{ID: id, Type: sectionType})
	return id
}

// Remove deletes id from the order. It reports whether id was present.
func (s *Instances) Remove(id InstanceID) bool {
	idx := s.Index(id)
	if idx < 0 {
		return false
	}
	s.order = slices.Delete(slices.Clone(s.order), idx, idx+1)
	return true
}

// Reorder applies a single-element move.
func (s *Instances) Reorder(from, to int) bool {
	next, moved := Move(s.order, from, to)
	if moved {
		s.order = next
	}
	return moved
}

// Index returns the position of id, or -1.
func (s *Instances) Index(id InstanceID) int {
	return slices.IndexFunc(s.order, func(inst Instance) bool { return inst.ID == id })
}

// Get returns the instance with id.
func (s *Instances) Get(id InstanceID) (Instance, bool) {
	idx := s.Index(id)
	if idx < 0 {
		return Instance{}, false
	}
	return s.order[idx], true
}

// List returns a copy of the order.
func (s *Instances) List() []Instance {
	return slices.Clone(s.order)
}

// Len reports the number of instances.
func (s *Instances) Len() int { return len(s.order) }

func (s *Instances) restore(order []Instance) {
	s.order = slices.Clone(order)
	var top InstanceID
	for _, inst := range order {
		top = max(top, inst.ID)
	}
	s.ids.Seed(top)
}

// ContentStore maps instance ids to their content. It stores exactly what it
// is given: missing keys are filled from schema defaults at render time only.
type ContentStore struct {
	entries map[InstanceID]schema.Content
}

// NewContentStore returns an empty store.
func NewContentStore() *ContentStore {
	return &ContentStore{entries: make(map[InstanceID]schema.Content)}
}

// Get returns the stored content for id.
func (s *ContentStore) Get(id InstanceID) (schema.Content, bool) {
	content, ok := s.entries[id]
	return content, ok
}

// Put replaces the content for id.
func (s *ContentStore) Put(id InstanceID, content schema.Content) {
	if content == nil {
		content = schema.Content{}
	}
	s.entries[id] = content
}

// Delete removes the content for id and returns what was stored.
func (s *ContentStore) Delete(id InstanceID) (schema.Content, bool) {
	content, ok := s.entries[id]
	delete(s.entries, id)
	return content, ok
}

// IDs returns the ids with stored content, sorted.
func (s *ContentStore) IDs() []InstanceID {
	return slices.Sorted(maps.Keys(s.entries))
}

// Snapshot deep copies the whole store.
func (s *ContentStore) Snapshot() map[InstanceID]schema.Content {
	out := make(map[InstanceID]schema.Content, len(s.entries))
	for id, content := range s.entries {
		out[id] = schema.CloneContent(content)
	}
	return out
}

// VisibilitySet is the set of hidden instance ids.
type VisibilitySet struct {
	hidden map[InstanceID]struct{}
}

// NewVisibilitySet returns an empty set.
func NewVisibilitySet() *VisibilitySet {
	return &VisibilitySet{hidden: make(map[InstanceID]struct{})}
}

// Toggle flips membership of id and reports whether it is now hidden.
func (v *VisibilitySet) Toggle(id InstanceID) bool {
	if _, ok := v.hidden[id]; ok {
		delete(v.hidden, id)
		return false
	}
	v.hidden[id] = struct{}{}
	return true
}

// Hidden reports whether id is hidden.
func (v *VisibilitySet) Hidden(id InstanceID) bool {
	_, ok := v.hidden[id]
	return ok
}

// Remove drops id from the set.
func (v *VisibilitySet) Remove(id InstanceID) {
	delete(v.hidden, id)
}

// List returns the hidden ids sorted ascending.
func (v *VisibilitySet) List() []InstanceID {
	return slices.Sorted(maps.Keys(v.hidden))
}

func (v *VisibilitySet) restore(ids []InstanceID) {
	v.hidden = make(map[InstanceID]struct{}, len(ids))
	for _, id := range ids {
		v.hidden[id] = struct{}{}
	}
}
