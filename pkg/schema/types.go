package schema

// FieldKind enumerates the closed set of editable field kinds.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindNumber   FieldKind = "number"
	KindImage    FieldKind = "image"
	KindURL      FieldKind = "url"
	KindArray    FieldKind = "array"
)

// Kinds lists every supported field kind in declaration order.
func Kinds() []FieldKind {
	return []FieldKind{KindText, KindTextarea, KindSelect, KindNumber, KindImage, KindURL, KindArray}
}

// Valid reports whether k belongs to the supported kind set.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindTextarea, KindSelect, KindNumber, KindImage, KindURL, KindArray:
		return true
	default:
		return false
	}
}

// Scalar reports whether the kind stores a single value (everything but array).
func (k FieldKind) Scalar() bool {
	return k.Valid() && k != KindArray
}

// Option is a selectable value for select fields.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FieldDefinition describes one editable property of a section. Array fields
// describe a fixed-shape repeated record through ItemFields and are bounded by
// MaxItems, falling back to the section level MaxItems.
type FieldDefinition struct {
	Kind       FieldKind         `json:"type" yaml:"type"`
	ID         string            `json:"id" yaml:"id"`
	Label      string            `json:"label" yaml:"label"`
	Default    any               `json:"default,omitempty" yaml:"default,omitempty"`
	Options    []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	ItemFields []FieldDefinition `json:"itemFields,omitempty" yaml:"itemFields,omitempty"`
	MaxItems   int               `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	Info       string            `json:"info,omitempty" yaml:"info,omitempty"`
	// ItemName is the noun used for a single array row ("Image", "Column").
	ItemName string `json:"name,omitempty" yaml:"name,omitempty"`
}

// SectionSchema is the declarative description of one section type.
type SectionSchema struct {
	Type     string            `json:"type" yaml:"type"`
	Name     string            `json:"name" yaml:"name"`
	MaxItems int               `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	Preview  string            `json:"preview,omitempty" yaml:"preview,omitempty"`
	Fields   []FieldDefinition `json:"fields" yaml:"fields"`
}

// Field returns the top-level field with the given id.
func (s SectionSchema) Field(id string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// ArrayLimit resolves the row cap for an array field: the field's own
// MaxItems, then the section's, then one.
func (s SectionSchema) ArrayLimit(field FieldDefinition) int {
	switch {
	case field.MaxItems > 0:
		return field.MaxItems
	case s.MaxItems > 0:
		return s.MaxItems
	default:
		return 1
	}
}

// Bounded returns a copy of field with MaxItems resolved against the section
// fallback, so form code that only sees the field still applies the cap.
func (s SectionSchema) Bounded(field FieldDefinition) FieldDefinition {
	if field.Kind == KindArray {
		field.MaxItems = s.ArrayLimit(field)
	}
	return field
}

// Content is the untyped key/value record stored for one section instance.
type Content map[string]any
