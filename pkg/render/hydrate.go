package render

import (
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// Hydrate fills the gaps in stored content for preview: missing scalar keys
// take the field default, each stored array row is merged over the item
// defaults, an empty array shows the cap's worth of default rows, and longer
// arrays are cut at the cap. The result is a new map; content is untouched.
func Hydrate(section schema.SectionSchema, content schema.Content) schema.Content {
	out := make(schema.Content, len(section.Fields)+len(content))
	for key, value := range content {
		out[key] = schema.CloneValue(value)
	}
	for _, field := range section.Fields {
		if field.Kind == schema.KindArray {
			out[field.ID] = hydrateRows(field.ItemFields, out[field.ID], section.ArrayLimit(field))
			continue
		}
		if _, ok := out[field.ID]; !ok && field.Default != nil {
			out[field.ID] = schema.CloneValue(field.Default)
		}
	}
	return out
}

func hydrateRows(items []schema.FieldDefinition, stored any, limit int) []any {
	rows, _ := stored.([]any)
	if len(rows) == 0 {
		rows = make([]any, limit)
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]any, len(rows))
	for idx, raw := range rows {
		record, _ := raw.(map[string]any)
		merged := make(map[string]any, len(items)+len(record))
		for _, item := range items {
			if item.Default != nil {
				merged[item.ID] = schema.CloneValue(item.Default)
			}
		}
		for key, value := range record {
			merged[key] = value
		}
		out[idx] = merged
	}
	return out
}
