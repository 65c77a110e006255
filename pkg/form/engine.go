package form

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// Change is emitted after every successful write-back.
type Change struct {
	Path    string
	Ref     Ref
	Content schema.Content
}

// Option configures an Engine.
type Option func(*Engine)

// WithOnChange registers a callback invoked after each Set.
func WithOnChange(fn func(Change)) Option {
	return func(e *Engine) {
		e.onChange = fn
	}
}

// WithUnknownPlaceholder overrides the inline marker for unknown kinds.
func WithUnknownPlaceholder(text string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(text) != "" {
			e.placeholder = text
		}
	}
}

const defaultPlaceholder = "unknown field type"

// Engine renders and writes back schema-driven form controls. It is not safe
// for concurrent use; the editor drives it from a single event loop.
type Engine struct {
	onChange    func(Change)
	placeholder string
	images      map[string]*ImageBinding
}

// New constructs an Engine.
func New(options ...Option) *Engine {
	engine := &Engine{
		placeholder: defaultPlaceholder,
		images:      make(map[string]*ImageBinding),
	}
	for _, opt := range options {
		if opt != nil {
			opt(engine)
		}
	}
	return engine
}

// RenderFields renders every field of section against content. Array caps are
// resolved against the section level maxItems.
func (e *Engine) RenderFields(section schema.SectionSchema, content schema.Content, path string) []Control {
	controls := make([]Control, 0, len(section.Fields))
	for _, field := range section.Fields {
		controls = append(controls, e.RenderField(section.Bounded(field), content, path))
	}
	return controls
}

// RenderField renders one top-level field. Values missing from content fall
// back to the field default; content itself is never filled in.
func (e *Engine) RenderField(field schema.FieldDefinition, content schema.Content, path string) Control {
	if field.Kind == schema.KindArray {
		return e.RenderArrayField(field, content, path)
	}
	value, ok := content[field.ID]
	if !ok {
		value = field.Default
	}
	return e.scalar(field, value, joinPath(path, field.ID), Ref{Field: field.ID, Index: NoIndex})
}

// RenderArrayField renders an array field as min(stored, cap) stored rows
// padded with synthesized empty rows up to the cap. Rows that are not records
// render as empty records.
func (e *Engine) RenderArrayField(field schema.FieldDefinition, content schema.Content, path string) Control {
	fieldPath := joinPath(path, field.ID)
	ctrl := Control{
		Field: field,
		Kind:  schema.KindArray,
		Path:  fieldPath,
		Ref:   Ref{Field: field.ID, Index: NoIndex},
	}
	if field.Kind != schema.KindArray {
		return e.unknown(field, fieldPath, ctrl.Ref)
	}

	limit := field.MaxItems
	if limit <= 0 {
		limit = 1
	}
	stored := rowsOf(content[field.ID])
	if stored != nil {
		ctrl.Value = schema.CloneValue(stored)
	}

	ctrl.Rows = make([]Row, limit)
	for idx := 0; idx < limit; idx++ {
		record := map[string]any{}
		synthesized := idx >= len(stored)
		if !synthesized {
			record = recordOf(stored[idx])
		}
		row := Row{Index: idx, Synthesized: synthesized, Controls: make([]Control, 0, len(field.ItemFields))}
		prefix := rowPath(fieldPath, idx)
		for _, sub := range field.ItemFields {
			value, ok := record[sub.ID]
			if !ok {
				value = sub.Default
			}
			ref := Ref{Field: field.ID, Index: idx, Sub: sub.ID}
			if sub.Kind == schema.KindArray {
				row.Controls = append(row.Controls, e.unknown(sub, joinPath(prefix, sub.ID), ref))
				continue
			}
			row.Controls = append(row.Controls, e.scalar(sub, value, joinPath(prefix, sub.ID), ref))
		}
		ctrl.Rows[idx] = row
	}
	return ctrl
}

func (e *Engine) scalar(field schema.FieldDefinition, value any, path string, ref Ref) Control {
	if _, ok := kinds[field.Kind]; !ok {
		return e.unknown(field, path, ref)
	}
	ctrl := Control{
		Field: field,
		Kind:  field.Kind,
		Path:  path,
		Ref:   ref,
		Value: schema.CloneValue(value),
	}
	switch field.Kind {
	case schema.KindSelect:
		ctrl.Options = append([]schema.Option(nil), field.Options...)
	case schema.KindImage:
		ctrl.Image = e.binding(path, value)
	}
	return ctrl
}

func (e *Engine) unknown(field schema.FieldDefinition, path string, ref Ref) Control {
	return Control{
		Field:       field,
		Kind:        field.Kind,
		Path:        path,
		Ref:         ref,
		Err:         fmt.Errorf("%w %q at %s", ErrUnknownFieldKind, field.Kind, path),
		Placeholder: e.placeholder,
	}
}

func (e *Engine) binding(path string, value any) *ImageBinding {
	if binding, ok := e.images[path]; ok {
		binding.Sync(value)
		return binding
	}
	binding := newImageBinding(path, value)
	e.images[path] = binding
	return binding
}

// Reset drops every cached image binding.
func (e *Engine) Reset() {
	clear(e.images)
}

// Forget drops cached image bindings whose path starts with prefix.
func (e *Engine) Forget(prefix string) {
	for path := range e.images {
		if path == prefix || strings.HasPrefix(path, prefix+".") || strings.HasPrefix(path, prefix+"[") {
			delete(e.images, path)
		}
	}
}

// Set writes value into the location ctrl addresses and returns the new
// content. The input map is never modified. Array fields are copied on write:
// the row list and the edited row are cloned, and the list is padded with
// empty records when the index lies past the stored length.
func (e *Engine) Set(content schema.Content, ctrl Control, value any) (schema.Content, error) {
	if ctrl.Err != nil {
		return content, ctrl.Err
	}
	handler, ok := kinds[ctrl.Kind]
	if !ok {
		return content, fmt.Errorf("%w %q at %s", ErrUnknownFieldKind, ctrl.Kind, ctrl.Path)
	}
	coerced, err := handler.coerce(ctrl.Field, value)
	if err != nil {
		return content, fmt.Errorf("form: set %s: %w", ctrl.Path, err)
	}

	next := make(schema.Content, len(content)+1)
	for key, existing := range content {
		next[key] = existing
	}

	if ctrl.Ref.Top() {
		next[ctrl.Ref.Field] = coerced
	} else {
		if ctrl.Ref.Index < 0 {
			return content, fmt.Errorf("form: set %s: negative row index", ctrl.Path)
		}
		stored := rowsOf(content[ctrl.Ref.Field])
		size := len(stored)
		if ctrl.Ref.Index >= size {
			size = ctrl.Ref.Index + 1
		}
		rows := make([]any, size)
		copy(rows, stored)
		for idx := len(stored); idx < size; idx++ {
			rows[idx] = map[string]any{}
		}
		record := recordOf(rows[ctrl.Ref.Index])
		edited := make(map[string]any, len(record)+1)
		for key, existing := range record {
			edited[key] = existing
		}
		edited[ctrl.Ref.Sub] = coerced
		rows[ctrl.Ref.Index] = edited
		next[ctrl.Ref.Field] = rows
	}

	if ctrl.Image != nil {
		ref, _ := coerced.(string)
		ctrl.Image.committedAs(ref)
	}
	if e.onChange != nil {
		e.onChange(Change{Path: ctrl.Path, Ref: ctrl.Ref, Content: next})
	}
	return next, nil
}

// Errors collects the render errors of controls and their rows.
func Errors(controls []Control) []error {
	var errs []error
	for _, ctrl := range controls {
		if ctrl.Err != nil {
			errs = append(errs, ctrl.Err)
		}
		for _, row := range ctrl.Rows {
			errs = append(errs, Errors(row.Controls)...)
		}
	}
	return errs
}

func rowsOf(value any) []any {
	switch typed := value.(type) {
	case []any:
		return typed
	case []map[string]any:
		out := make([]any, len(typed))
		for idx, row := range typed {
			out[idx] = row
		}
		return out
	default:
		return nil
	}
}

func recordOf(value any) map[string]any {
	switch typed := value.(type) {
	case map[string]any:
		return typed
	case schema.Content:
		return typed
	default:
		return map[string]any{}
	}
}
