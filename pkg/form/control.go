package form

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// NoIndex marks a Ref that targets a top-level field.
const NoIndex = -1

// Ref locates the value a control edits inside instance content.
type Ref struct {
	Field string
	Index int
	Sub   string
}

// Top reports whether the ref addresses a top-level field.
func (r Ref) Top() bool { return r.Index == NoIndex }

// Control is one bound form control.
type Control struct {
	Field schema.FieldDefinition
	Kind  schema.FieldKind
	Path  string
	Ref   Ref
	Value any

	Options []schema.Option
	Rows    []Row
	Image   *ImageBinding

	// Err is set for controls that could not be rendered; Placeholder holds
	// the inline marker shown in their place.
	Err         error
	Placeholder string
}

// Row is one rendered record of an array field.
type Row struct {
	Index    int
	Controls []Control
	// Synthesized rows pad the stored list up to the cap and are not stored.
	Synthesized bool
}

// String returns the control value as text, for drivers that only deal in
// strings.
func (c Control) String() string {
	switch v := c.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// Label falls back to the field id when the schema omits a label.
func (c Control) Label() string {
	if label := strings.TrimSpace(c.Field.Label); label != "" {
		return label
	}
	return schema.FormatLabel(c.Field.ID)
}

func joinPath(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "." + id
}

func rowPath(prefix string, index int) string {
	return prefix + "[" + strconv.Itoa(index) + "]"
}

// Find returns the control at path, searching array rows.
func Find(controls []Control, path string) (Control, bool) {
	for _, ctrl := range controls {
		if ctrl.Path == path {
			return ctrl, true
		}
		for _, row := range ctrl.Rows {
			if found, ok := Find(row.Controls, path); ok {
				return found, true
			}
		}
	}
	return Control{}, false
}
