package render

import "strings"

// TemplateLabelFuncs exposes a Labeler to preview templates as
// section_label(type, fallback) and field_label(type, path, fallback). The
// html renderer registers them in its global context.
func TemplateLabelFuncs(labels Labeler) map[string]any {
	return map[string]any{
		"section_label": func(sectionType, fallback string) string {
			return labels.Section(strings.TrimSpace(sectionType), fallback)
		},
		"field_label": func(sectionType, path, fallback string) string {
			return labels.Field(strings.TrimSpace(sectionType), strings.TrimSpace(path), fallback)
		},
	}
}
