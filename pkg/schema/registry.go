package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSectionNotFound is returned when a section type is not registered.
// Callers treat it as "render nothing, skip the add".
var ErrSectionNotFound = errors.New("schema: section type not found")

// DefaultsFunc builds the default content for a newly added instance.
type DefaultsFunc func(section SectionSchema) Content

// Entry is one registry row: the schema, the default content factory and the
// preview template name the HTML renderer resolves for the type.
type Entry struct {
	Schema   SectionSchema
	Defaults DefaultsFunc
	Preview  string
}

// RegistryOption customises registry construction.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	defaults map[string]DefaultsFunc
}

// WithDefaults overrides the default content factory for one section type.
func WithDefaults(sectionType string, fn DefaultsFunc) RegistryOption {
	return func(cfg *registryConfig) {
		if fn == nil {
			return
		}
		if cfg.defaults == nil {
			cfg.defaults = make(map[string]DefaultsFunc)
		}
		cfg.defaults[strings.TrimSpace(sectionType)] = fn
	}
}

// Registry is the read-only section type table. There is no mutation API
// after construction, so a *Registry is safe to share between goroutines.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// NewRegistry validates the supplied schemas and freezes them into a
// registry. Duplicate section types are rejected.
func NewRegistry(sections []SectionSchema, options ...RegistryOption) (*Registry, error) {
	var cfg registryConfig
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	reg := &Registry{
		entries: make(map[string]Entry, len(sections)),
		order:   make([]string, 0, len(sections)),
	}
	for _, section := range sections {
		section.Type = strings.TrimSpace(section.Type)
		if err := Validate(section); err != nil {
			return nil, err
		}
		if _, exists := reg.entries[section.Type]; exists {
			return nil, fmt.Errorf("schema: section type %q already registered", section.Type)
		}

		entry := Entry{
			Schema:   cloneSchema(section),
			Defaults: DeriveDefaults,
			Preview:  section.Preview,
		}
		if entry.Preview == "" {
			entry.Preview = section.Type
		}
		if fn, ok := cfg.defaults[section.Type]; ok {
			entry.Defaults = fn
		}
		reg.entries[section.Type] = entry
		reg.order = append(reg.order, section.Type)
	}
	return reg, nil
}

// MustNewRegistry panics on construction failure. Useful for init-time wiring.
func MustNewRegistry(sections []SectionSchema, options ...RegistryOption) *Registry {
	reg, err := NewRegistry(sections, options...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup returns a copy of the schema registered for sectionType.
func (r *Registry) Lookup(sectionType string) (SectionSchema, error) {
	entry, ok := r.Entry(sectionType)
	if !ok {
		return SectionSchema{}, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionType)
	}
	return entry.Schema, nil
}

// Entry returns a copy of the full registry row for sectionType.
func (r *Registry) Entry(sectionType string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	entry, ok := r.entries[sectionType]
	if !ok {
		return Entry{}, false
	}
	entry.Schema = cloneSchema(entry.Schema)
	return entry, true
}

// DefaultContent builds a fresh deep copy of the default content for
// sectionType. The result never shares references with the registry.
func (r *Registry) DefaultContent(sectionType string) (Content, error) {
	entry, ok := r.Entry(sectionType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionType)
	}
	content := entry.Defaults(entry.Schema)
	if content == nil {
		return Content{}, nil
	}
	return CloneContent(content), nil
}

// Has reports whether sectionType is registered.
func (r *Registry) Has(sectionType string) bool {
	if r == nil {
		return false
	}
	_, ok := r.entries[sectionType]
	return ok
}

// Names returns the registered section types in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Len reports how many section types are registered.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// DeriveDefaults builds default content from the field defaults declared in
// the schema. Fields without a default are left out; render code falls back
// to the schema at read time.
func DeriveDefaults(section SectionSchema) Content {
	content := make(Content, len(section.Fields))
	for _, field := range section.Fields {
		if field.Default == nil {
			continue
		}
		content[field.ID] = CloneValue(field.Default)
	}
	return content
}
