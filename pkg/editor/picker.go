package editor

import (
	"slices"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// Picker is the add-section popup state. At most one is open per session.
type Picker struct {
	Open    bool   `json:"open"`
	Query   string `json:"query,omitempty"`
	Preview string `json:"preview,omitempty"`
}

// Filter returns the catalog entries matching query, case-insensitively,
// against both the raw id and its display label. Prefix matches come first;
// catalog order is kept within each group. An empty query returns the whole
// catalog.
func Filter(catalog []string, query string) []string {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return slices.Clone(catalog)
	}
	var prefix, contains []string
	for _, id := range catalog {
		raw := strings.ToLower(id)
		label := strings.ToLower(schema.FormatLabel(id))
		switch {
		case strings.HasPrefix(raw, needle), strings.HasPrefix(label, needle):
			prefix = append(prefix, id)
		case strings.Contains(raw, needle), strings.Contains(label, needle):
			contains = append(contains, id)
		}
	}
	return append(prefix, contains...)
}
