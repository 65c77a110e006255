package schema

import "github.com/mohae/deepcopy"

// CloneContent returns a deep copy of content. Nested maps and slices are
// copied so edits to the result never leak into the source.
func CloneContent(content Content) Content {
	if content == nil {
		return nil
	}
	cloned, ok := deepcopy.Copy(content).(Content)
	if !ok {
		return Content{}
	}
	return cloned
}

// CloneValue deep copies an arbitrary content value.
func CloneValue(value any) any {
	if value == nil {
		return nil
	}
	return deepcopy.Copy(value)
}

func cloneSchema(src SectionSchema) SectionSchema {
	out := src
	out.Fields = cloneFields(src.Fields)
	return out
}

func cloneFields(fields []FieldDefinition) []FieldDefinition {
	if fields == nil {
		return nil
	}
	out := make([]FieldDefinition, len(fields))
	for idx, field := range fields {
		out[idx] = cloneField(field)
	}
	return out
}

func cloneField(field FieldDefinition) FieldDefinition {
	out := field
	out.Default = CloneValue(field.Default)
	if field.Options != nil {
		out.Options = append([]Option(nil), field.Options...)
	}
	out.ItemFields = cloneFields(field.ItemFields)
	return out
}
